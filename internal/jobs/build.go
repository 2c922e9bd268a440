// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package jobs implements the documentation build pipeline: plan pages,
// resolve symbols, emit scaffolds and the site map.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ManuGH/docsmith/internal/config"
	"github.com/ManuGH/docsmith/internal/docpath"
	dslog "github.com/ManuGH/docsmith/internal/log"
	"github.com/ManuGH/docsmith/internal/resolve"
	"github.com/ManuGH/docsmith/internal/sitemap"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Build performs the complete build cycle: plan pages → resolve symbols →
// write scaffolds + site map.
func Build(ctx context.Context, cfg config.AppConfig, opts Options) (*Status, *Artifacts, error) {
	logger := dslog.WithComponentFromContext(ctx, "jobs")
	logger.Info().
		Str("event", "build.start").
		Bool("dry_run", opts.DryRun).
		Bool("strict", opts.Strict).
		Msg("starting build")

	stats := BuildStats{StartTime: time.Now()}

	tree := sitemap.Build(cfg)
	if err := sitemap.Check(tree); err != nil {
		return nil, nil, fmt.Errorf("site map: %w", err)
	}
	for _, orphan := range tree.Orphans {
		logger.Warn().
			Str("event", "build.orphan_page").
			Str("page", orphan).
			Msg("generated page is not referenced by navigation")
	}

	missingIncludes := checkIncludes(cfg, tree, logger)
	if opts.Strict && missingIncludes > 0 {
		return nil, nil, fmt.Errorf("strict build: %d missing include sources", missingIncludes)
	}

	pages, err := planPages(ctx, cfg, tree, opts)
	if err != nil {
		return nil, nil, err
	}

	unresolved := 0
	symbols := 0
	for _, p := range pages {
		symbols += len(p.Symbols)
		for _, s := range p.Symbols {
			if !s.Resolved {
				unresolved++
				logger.Warn().
					Str("event", "build.unresolved_symbol").
					Str("page", p.Page).
					Str("symbol", s.Symbol).
					Msg("symbol not found on search paths")
			}
		}
	}
	if opts.Strict && unresolved > 0 {
		return nil, nil, fmt.Errorf("strict build: %d unresolved symbols", unresolved)
	}

	if !opts.DryRun {
		if err := writeArtifacts(ctx, cfg, pages, tree); err != nil {
			return nil, nil, err
		}
	}

	stats.EndTime = time.Now()
	stats.DurationMS = stats.EndTime.Sub(stats.StartTime).Milliseconds()
	stats.Pages = len(pages)
	stats.Symbols = symbols
	stats.Unresolved = unresolved
	stats.Orphans = len(tree.Orphans)

	logger.Info().
		Str("event", "build.done").
		Int("pages", stats.Pages).
		Int("symbols", stats.Symbols).
		Int("unresolved", stats.Unresolved).
		Int64("duration_ms", stats.DurationMS).
		Msg("build finished")

	status := &Status{
		LastRun:    stats.EndTime,
		Pages:      stats.Pages,
		Symbols:    stats.Symbols,
		Unresolved: stats.Unresolved,
	}
	artifacts := &Artifacts{Pages: pages, SiteMap: tree, Stats: stats}
	return status, artifacts, nil
}

// checkIncludes verifies that "<<" include sources exist on disk. Sources
// resolve against the config file directory, like the search paths. Missing
// sources are warned about and counted for strict mode.
func checkIncludes(cfg config.AppConfig, tree sitemap.Tree, logger zerolog.Logger) int {
	missing := 0
	for _, leaf := range sitemap.Flatten(tree) {
		if leaf.Kind != sitemap.KindInclude || leaf.Include == "" {
			continue
		}
		src := leaf.Include
		if !filepath.IsAbs(src) {
			src = filepath.Join(cfg.BaseDir, src)
		}
		if _, err := os.Stat(src); err != nil {
			missing++
			logger.Warn().
				Str("event", "build.missing_include").
				Str("page", leaf.Page).
				Str("include", leaf.Include).
				Msg("include source file not found")
		}
	}
	return missing
}

// planPages resolves every generate rule into a PagePlan. Pages are
// independent, so resolution runs in a bounded worker group.
func planPages(ctx context.Context, cfg config.AppConfig, tree sitemap.Tree, opts Options) ([]PagePlan, error) {
	searchPaths := append(cfg.AbsSearchPaths(), cfg.BaseDir)
	resolver := resolve.New(searchPaths)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	pages := make([]PagePlan, len(cfg.Site.Generate))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, rule := range cfg.Site.Generate {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			paths := make([]docpath.Path, 0, len(rule.Symbols))
			for _, spec := range rule.Symbols {
				p, err := docpath.Parse(spec)
				if err != nil {
					return fmt.Errorf("page %s: %w", rule.Page, err)
				}
				paths = append(paths, p)
			}

			resolutions, _ := resolver.ResolveAll(paths)

			title := pageTitle(rule.Page)
			if node, ok := sitemap.Lookup(tree, rule.Page); ok && node.Title != "" {
				title = node.Title
			}

			pages[i] = PagePlan{
				Page:    rule.Page,
				Title:   title,
				Symbols: resolutions,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// writeArtifacts writes page scaffolds into gens_dir and the machine
// readable site map next to them. All writes are atomic.
func writeArtifacts(ctx context.Context, cfg config.AppConfig, pages []PagePlan, tree sitemap.Tree) error {
	gensDir := cfg.AbsGensDir()
	if err := os.MkdirAll(gensDir, 0750); err != nil {
		return fmt.Errorf("create gens dir: %w", err)
	}

	for _, page := range pages {
		target := filepath.Join(gensDir, filepath.FromSlash(page.Page))
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return fmt.Errorf("create page dir for %s: %w", page.Page, err)
		}
		if err := writeScaffold(ctx, target, page); err != nil {
			return fmt.Errorf("scaffold %s: %w", page.Page, err)
		}
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("encode site map: %w", err)
	}
	if err := writeFileAtomic(ctx, filepath.Join(gensDir, "sitemap.json"), data); err != nil {
		return fmt.Errorf("write site map: %w", err)
	}

	return nil
}
