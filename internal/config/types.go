// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config provides configuration management for docsmith.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SiteConfig mirrors the documentation-site configuration file. Field names
// follow the original file keys; parsing is strict, unknown keys are
// rejected by the loader.
type SiteConfig struct {
	SiteName        string   `yaml:"site_name"`
	SiteDescription string   `yaml:"site_description"`
	SiteAuthor      string   `yaml:"site_author"`
	SiteURL         string   `yaml:"site_url"`
	RepoURL         string   `yaml:"repo_url"`
	EditURI         string   `yaml:"edit_uri"`
	Copyright       string   `yaml:"copyright"`
	GoogleAnalytics []string `yaml:"google_analytics"`

	Theme    Theme    `yaml:"theme"`
	ExtraCSS []string `yaml:"extra_css"`

	Generate []GenerateRule `yaml:"generate"`
	Pages    []NavEntry     `yaml:"pages"`

	DocsDir string `yaml:"docs_dir"`
	GensDir string `yaml:"gens_dir"`
	SiteDir string `yaml:"site_dir"`

	Loader       string `yaml:"loader"`
	Preprocessor string `yaml:"preprocessor"`

	AdditionalSearchPaths []string `yaml:"additional_search_paths"`
}

// Theme selects the site theme. The YAML value is either a bare string
// ("readthedocs") or a mapping with name and custom_dir.
type Theme struct {
	Name      string `yaml:"name"`
	CustomDir string `yaml:"custom_dir"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (t *Theme) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&t.Name)
	case yaml.MappingNode:
		type plain Theme
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*t = Theme(p)
		return nil
	default:
		return fmt.Errorf("line %d: theme must be a string or a mapping", node.Line)
	}
}

// MarshalYAML renders the compact scalar form when no custom dir is set.
func (t Theme) MarshalYAML() (interface{}, error) {
	if t.CustomDir == "" {
		return t.Name, nil
	}
	type plain Theme
	return plain(t), nil
}

// GenerateRule maps one output Markdown page to the ordered list of symbol
// specs it documents. The YAML form is a single-key mapping entry:
//
//	extractors.md:
//	  - kipoiseq.extractors.FastaStringExtractor++
//
// A bare string value is accepted as a one-element list.
type GenerateRule struct {
	Page    string
	Symbols []string
}

// UnmarshalYAML decodes the single-key mapping form.
func (g *GenerateRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: generate entry must be a mapping of page to symbols", node.Line)
	}
	if len(node.Content) != 2 {
		return fmt.Errorf("line %d: generate entry must have exactly one page key", node.Line)
	}

	key, val := node.Content[0], node.Content[1]
	if err := key.Decode(&g.Page); err != nil {
		return fmt.Errorf("line %d: generate page key: %w", key.Line, err)
	}

	switch val.Kind {
	case yaml.ScalarNode:
		var s string
		if err := val.Decode(&s); err != nil {
			return err
		}
		g.Symbols = []string{s}
	case yaml.SequenceNode:
		if err := val.Decode(&g.Symbols); err != nil {
			return fmt.Errorf("line %d: generate symbols for %q: %w", val.Line, g.Page, err)
		}
	default:
		return fmt.Errorf("line %d: symbols for %q must be a string or a list", val.Line, g.Page)
	}
	return nil
}

// MarshalYAML renders the single-key mapping form.
func (g GenerateRule) MarshalYAML() (interface{}, error) {
	return map[string][]string{g.Page: g.Symbols}, nil
}

// NavEntry is one entry of the hierarchical site map. Leaves reference a
// page ("Title: page.md", optionally with an external include via
// "page.md << ../README.md"); sections carry nested children. A bare
// scalar entry ("index.md") is a leaf without a title.
type NavEntry struct {
	Title    string
	Page     string
	Children []NavEntry
}

// IsSection reports whether the entry has nested children.
func (n NavEntry) IsSection() bool {
	return len(n.Children) > 0
}

// UnmarshalYAML decodes scalar, single-key leaf and single-key section forms.
func (n *NavEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&n.Page)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: pages entry must have exactly one key", node.Line)
		}
		key, val := node.Content[0], node.Content[1]
		if err := key.Decode(&n.Title); err != nil {
			return fmt.Errorf("line %d: pages entry title: %w", key.Line, err)
		}
		switch val.Kind {
		case yaml.ScalarNode:
			return val.Decode(&n.Page)
		case yaml.SequenceNode:
			if err := val.Decode(&n.Children); err != nil {
				return fmt.Errorf("line %d: pages section %q: %w", val.Line, n.Title, err)
			}
			return nil
		default:
			return fmt.Errorf("line %d: pages entry %q must map to a page or a list", val.Line, n.Title)
		}
	default:
		return fmt.Errorf("line %d: pages entry must be a string or a mapping", node.Line)
	}
}

// MarshalYAML renders the original YAML forms.
func (n NavEntry) MarshalYAML() (interface{}, error) {
	if n.Title == "" {
		return n.Page, nil
	}
	if n.IsSection() {
		return map[string][]NavEntry{n.Title: n.Children}, nil
	}
	return map[string]string{n.Title: n.Page}, nil
}

// Settings carries runtime daemon settings. They come from the environment
// only so that configuration files stay compatible with the original tool.
type Settings struct {
	ListenAddr string
	LogLevel   string
	HistoryDB  string
	Strict     bool

	RateLimitEnabled bool
	RateLimitRPS     int

	WatchDebounceMS int
}

// AppConfig is the fully resolved configuration: the site config plus
// runtime settings and the directory the config file was loaded from.
type AppConfig struct {
	Site     SiteConfig
	Settings Settings

	// BaseDir is the directory of the config file; relative site paths
	// (docs_dir, gens_dir, site_dir, search paths) resolve against it.
	BaseDir string

	Version string
}
