// SPDX-License-Identifier: MIT

package jobs

import (
	"time"

	"github.com/ManuGH/docsmith/internal/resolve"
	"github.com/ManuGH/docsmith/internal/sitemap"
)

// Status represents the outcome of the most recent build.
type Status struct {
	LastRun    time.Time `json:"last_run"`
	Pages      int       `json:"pages"`
	Symbols    int       `json:"symbols"`
	Unresolved int       `json:"unresolved"`
	Error      string    `json:"error,omitempty"`
}

// Options controls the behavior of a build.
type Options struct {
	DryRun      bool // Plan only, skip all file writes
	Strict      bool // Unresolved symbols fail the build
	Parallelism int  // Max parallel page workers (0 = GOMAXPROCS)
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		DryRun:      false,
		Strict:      false,
		Parallelism: 0,
	}
}

// PagePlan is the planned content of one generated page.
type PagePlan struct {
	Page    string               `json:"page"`
	Title   string               `json:"title,omitempty"`
	Symbols []resolve.Resolution `json:"symbols"`
}

// Artifacts represents the output of a build.
type Artifacts struct {
	Pages   []PagePlan   `json:"pages"`
	SiteMap sitemap.Tree `json:"sitemap"`
	Stats   BuildStats   `json:"stats"`
}

// BuildStats contains statistics about the build.
type BuildStats struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMS int64     `json:"duration_ms"`
	Pages      int       `json:"pages"`
	Symbols    int       `json:"symbols"`
	Unresolved int       `json:"unresolved"`
	Orphans    int       `json:"orphans"`
}
