// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ManuGH/docsmith/internal/docpath"
	"github.com/ManuGH/docsmith/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package.
// It covers the schema-level rules: required keys, well-formed URLs, valid
// dotted symbol paths and sane directory layout. Cross-checks that need the
// filesystem (dangling nav references, unresolved symbols) live in the
// sitemap and jobs packages.
func Validate(cfg AppConfig) error {
	v := validate.New()

	site := cfg.Site

	v.NotEmpty("site_name", site.SiteName)
	v.NotEmpty("docs_dir", site.DocsDir)

	if len(site.Pages) == 0 {
		v.AddError("pages", "at least one navigation entry is required", nil)
	}

	if strings.TrimSpace(site.SiteURL) != "" {
		v.URL("site_url", site.SiteURL, []string{"http", "https"})
	}
	if strings.TrimSpace(site.RepoURL) != "" {
		v.URL("repo_url", site.RepoURL, []string{"http", "https"})
	}
	if site.EditURI != "" && site.RepoURL == "" {
		v.AddError("edit_uri", "requires repo_url to be set", site.EditURI)
	}

	if n := len(site.GoogleAnalytics); n != 0 && n != 2 {
		v.AddError("google_analytics", "must be empty or [tracking-id, domain]", site.GoogleAnalytics)
	}

	v.NotEmpty("theme.name", site.Theme.Name)
	if site.Theme.CustomDir != "" {
		v.Path("theme.custom_dir", site.Theme.CustomDir)
	}
	for i, css := range site.ExtraCSS {
		v.Path(fmt.Sprintf("extra_css[%d]", i), css)
	}

	validateGenerate(v, site.Generate)
	validateNav(v, "pages", site.Pages)

	for _, field := range []struct{ name, value string }{
		{"docs_dir", site.DocsDir},
		{"gens_dir", site.GensDir},
		{"site_dir", site.SiteDir},
	} {
		if strings.Contains(field.value, "..") {
			v.AddError(field.name, "path contains traversal sequences (..)", field.value)
		}
	}
	if site.GensDir != "" && site.GensDir == site.SiteDir {
		v.AddError("site_dir", "must differ from gens_dir", site.SiteDir)
	}

	validateHook(v, "loader", site.Loader)
	validateHook(v, "preprocessor", site.Preprocessor)

	for i, p := range site.AdditionalSearchPaths {
		if strings.TrimSpace(p) == "" {
			v.AddError(fmt.Sprintf("additional_search_paths[%d]", i), "path cannot be empty", p)
		}
	}

	validateSettings(v, cfg.Settings)

	if !v.IsValid() {
		return v.Err()
	}
	return nil
}

func validateGenerate(v *validate.Validator, rules []GenerateRule) {
	seen := map[string]struct{}{}
	for i, rule := range rules {
		field := fmt.Sprintf("generate[%d]", i)

		page := strings.TrimSpace(rule.Page)
		if page == "" {
			v.AddError(field, "page path cannot be empty", rule.Page)
			continue
		}
		v.Path(field, page)
		if strings.ToLower(filepath.Ext(page)) != ".md" {
			v.AddError(field, "page path must end in .md", page)
		}
		if _, dup := seen[page]; dup {
			v.AddError(field, "duplicate generate page", page)
		}
		seen[page] = struct{}{}

		if len(rule.Symbols) == 0 {
			v.AddError(field, "page must document at least one symbol", page)
		}
		for j, spec := range rule.Symbols {
			if _, err := docpath.Parse(spec); err != nil {
				v.AddError(fmt.Sprintf("%s.symbols[%d]", field, j), err.Error(), spec)
			}
		}
	}
}

func validateNav(v *validate.Validator, field string, entries []NavEntry) {
	for i, entry := range entries {
		entryField := fmt.Sprintf("%s[%d]", field, i)

		if entry.IsSection() {
			if entry.Page != "" {
				v.AddError(entryField, "section cannot also reference a page", entry.Page)
			}
			v.NotEmpty(entryField+".title", entry.Title)
			validateNav(v, entryField, entry.Children)
			continue
		}

		page, include := docpath.SplitInclude(entry.Page)
		if page == "" {
			v.AddError(entryField, "navigation leaf must reference a page", entry.Title)
			continue
		}
		v.Path(entryField, page)
		if strings.ToLower(filepath.Ext(page)) != ".md" {
			v.AddError(entryField, "page path must end in .md", page)
		}
		// External includes may point outside the docs tree ("<< ../README.md"),
		// so only reject empty sources here.
		if strings.Contains(entry.Page, "<<") && include == "" {
			v.AddError(entryField, "include directive has no source file", entry.Page)
		}
	}
}

// validateHook checks the dotted path of a loader/preprocessor hook. Hooks
// are recorded and surfaced through the API but never executed.
func validateHook(v *validate.Validator, field, hook string) {
	if hook == "" {
		return
	}
	if _, err := docpath.Parse(hook); err != nil {
		v.AddError(field, err.Error(), hook)
	}
}

func validateSettings(v *validate.Validator, s Settings) {
	if _, port, found := strings.Cut(s.ListenAddr, ":"); !found || port == "" {
		v.AddError("listen", "must be host:port", s.ListenAddr)
	}

	v.OneOf("log_level", s.LogLevel, []string{"trace", "debug", "info", "warn", "error"})
	if s.RateLimitEnabled {
		v.Positive("rate_limit_rps", s.RateLimitRPS)
	}
	if s.WatchDebounceMS < 0 {
		v.AddError("watch_debounce_ms", "must be >= 0", s.WatchDebounceMS)
	}
}
