// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package sitemap builds the navigation tree of the documentation site
// from the configured pages hierarchy.
package sitemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ManuGH/docsmith/internal/config"
	"github.com/ManuGH/docsmith/internal/docpath"
)

// PageKind classifies what backs a navigation leaf.
type PageKind string

const (
	// KindGenerated pages come from a generate rule.
	KindGenerated PageKind = "generated"
	// KindStatic pages are hand-written files under docs_dir.
	KindStatic PageKind = "static"
	// KindInclude pages are populated from an external file via "<<".
	KindInclude PageKind = "include"
	// KindMissing pages have no backing source at all.
	KindMissing PageKind = "missing"
)

// Node is one entry of the resolved navigation tree.
type Node struct {
	Title    string   `json:"title,omitempty"`
	Page     string   `json:"page,omitempty"`
	Include  string   `json:"include,omitempty"`
	Kind     PageKind `json:"kind,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

// IsSection reports whether the node has children.
func (n Node) IsSection() bool { return len(n.Children) > 0 }

// Tree is the resolved site map.
type Tree struct {
	Nodes []Node `json:"nodes"`
	// Orphans are generated pages that no navigation entry references.
	Orphans []string `json:"orphans,omitempty"`
}

// Build resolves the configured pages hierarchy against the generate rules
// and the docs directory. Leaves referencing neither a generated page, a
// static file nor an external include are classified KindMissing and
// reported as errors by Check.
func Build(cfg config.AppConfig) Tree {
	generated := map[string]bool{}
	for _, rule := range cfg.Site.Generate {
		generated[rule.Page] = false
	}

	docsDir := cfg.AbsDocsDir()

	var walk func(entries []config.NavEntry) []Node
	walk = func(entries []config.NavEntry) []Node {
		nodes := make([]Node, 0, len(entries))
		for _, e := range entries {
			if e.IsSection() {
				nodes = append(nodes, Node{
					Title:    e.Title,
					Children: walk(e.Children),
				})
				continue
			}

			page, include := docpath.SplitInclude(e.Page)
			node := Node{Title: e.Title, Page: page, Include: include}

			switch {
			case include != "":
				node.Kind = KindInclude
			case pageGenerated(generated, page):
				node.Kind = KindGenerated
				generated[page] = true
			case isFile(filepath.Join(docsDir, page)):
				node.Kind = KindStatic
			default:
				node.Kind = KindMissing
			}
			nodes = append(nodes, node)
		}
		return nodes
	}

	tree := Tree{Nodes: walk(cfg.Site.Pages)}

	for page, referenced := range generated {
		if !referenced {
			tree.Orphans = append(tree.Orphans, page)
		}
	}
	sort.Strings(tree.Orphans)

	return tree
}

func pageGenerated(generated map[string]bool, page string) bool {
	_, ok := generated[page]
	return ok
}

// Check returns an error when the tree contains navigation leaves without a
// backing page. Orphaned generated pages are tolerated; callers may warn.
func Check(t Tree) error {
	var missing []string
	var visit func(nodes []Node)
	visit = func(nodes []Node) {
		for _, n := range nodes {
			if n.IsSection() {
				visit(n.Children)
				continue
			}
			if n.Kind == KindMissing {
				missing = append(missing, n.Page)
			}
		}
	}
	visit(t.Nodes)

	if len(missing) > 0 {
		return fmt.Errorf("navigation references pages with no backing source: %v", missing)
	}
	return nil
}

// Flatten returns the ordered list of leaf nodes, depth first.
func Flatten(t Tree) []Node {
	var out []Node
	var visit func(nodes []Node)
	visit = func(nodes []Node) {
		for _, n := range nodes {
			if n.IsSection() {
				visit(n.Children)
				continue
			}
			out = append(out, n)
		}
	}
	visit(t.Nodes)
	return out
}

// Lookup finds the leaf node for an output page path.
func Lookup(t Tree, page string) (Node, bool) {
	for _, n := range Flatten(t) {
		if n.Page == page {
			return n, true
		}
	}
	return Node{}, false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
