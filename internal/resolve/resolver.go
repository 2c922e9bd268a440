// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package resolve locates the source files behind dotted symbol paths.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/docsmith/internal/docpath"
)

// Resolution is the outcome of resolving one symbol path.
type Resolution struct {
	Symbol string `json:"symbol"`
	// File is the source file backing the longest resolvable module prefix,
	// relative to the search path it was found under. Empty if unresolved.
	File string `json:"file,omitempty"`
	// SearchPath is the search path the file was found under.
	SearchPath string `json:"search_path,omitempty"`
	// Attribute is the dotted remainder after the module prefix, e.g. the
	// class or function name defined inside File.
	Attribute string `json:"attribute,omitempty"`
	Resolved  bool   `json:"resolved"`
}

// Resolver resolves dotted module paths against an ordered list of search
// paths, mirroring how the documented language locates modules: a segment
// resolves to either <seg>.py or <seg>/__init__.py.
type Resolver struct {
	searchPaths []string
}

// New creates a resolver over the given search paths. Order matters: the
// first search path containing the top-level package wins.
func New(searchPaths []string) *Resolver {
	return &Resolver{searchPaths: searchPaths}
}

// Resolve resolves a parsed symbol path. The longest prefix of segments that
// maps onto the filesystem is taken as the module; the remainder becomes the
// attribute path. A symbol with no resolvable prefix is returned with
// Resolved == false.
func (r *Resolver) Resolve(p docpath.Path) Resolution {
	res := Resolution{Symbol: p.String()}

	for _, root := range r.searchPaths {
		if file, consumed, ok := resolveUnder(root, p.Segments); ok {
			res.File = file
			res.SearchPath = root
			res.Attribute = strings.Join(p.Segments[consumed:], ".")
			res.Resolved = true
			return res
		}
	}
	return res
}

// ResolveAll resolves every spec and reports how many failed.
func (r *Resolver) ResolveAll(paths []docpath.Path) ([]Resolution, int) {
	out := make([]Resolution, 0, len(paths))
	unresolved := 0
	for _, p := range paths {
		res := r.Resolve(p)
		if !res.Resolved {
			unresolved++
		}
		out = append(out, res)
	}
	return out, unresolved
}

// resolveUnder walks segments below root, descending through package
// directories. It returns the relative source file of the deepest module
// reached and how many segments it consumed.
func resolveUnder(root string, segments []string) (string, int, bool) {
	dir := root
	var file string
	consumed := 0

	for i, seg := range segments {
		pkgDir := filepath.Join(dir, seg)
		if isDir(pkgDir) && isFile(filepath.Join(pkgDir, "__init__.py")) {
			file = filepath.Join(pkgDir, "__init__.py")
			dir = pkgDir
			consumed = i + 1
			continue
		}
		if mod := filepath.Join(dir, seg+".py"); isFile(mod) {
			file = mod
			consumed = i + 1
		}
		// Deeper segments are attributes defined inside the module.
		break
	}

	if consumed == 0 {
		return "", 0, false
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	return rel, consumed, true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
