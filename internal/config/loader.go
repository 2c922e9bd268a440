// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment keys consumed by the loader. The site configuration itself
// lives in the YAML file; these only tune the surrounding daemon.
const (
	EnvListen        = "DOCSMITH_LISTEN"
	EnvLogLevel      = "DOCSMITH_LOG_LEVEL"
	EnvHistoryDB     = "DOCSMITH_HISTORY_DB"
	EnvStrict        = "DOCSMITH_STRICT"
	EnvRateLimit     = "DOCSMITH_RATE_LIMIT"
	EnvRateLimitRPS  = "DOCSMITH_RATE_LIMIT_RPS"
	EnvWatchDebounce = "DOCSMITH_WATCH_DEBOUNCE_MS"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
	}
}

// Load loads configuration in Strict Validated Order:
// Parse File (Strict) -> Apply Defaults -> Apply Env Settings -> Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{Version: l.version}

	if l.configPath == "" {
		return cfg, fmt.Errorf("config path is required")
	}

	site, err := l.loadFile(l.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config file: %w", err)
	}
	cfg.Site = *site

	abs, err := filepath.Abs(l.configPath)
	if err != nil {
		return cfg, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.BaseDir = filepath.Dir(abs)

	applySiteDefaults(&cfg.Site)
	cfg.Settings = loadSettings()

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads the site configuration from a YAML file with STRICT parsing.
// Unknown fields cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*SiteConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var site SiteConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&site); err != nil {
		if err == io.EOF {
			return &SiteConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error (unknown key?): %w", err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &site, nil
}

// applySiteDefaults fills in the directory and theme defaults of the
// original documentation tool.
func applySiteDefaults(site *SiteConfig) {
	if site.DocsDir == "" {
		site.DocsDir = "sources"
	}
	if site.GensDir == "" {
		site.GensDir = "_build/pydocmd"
	}
	if site.SiteDir == "" {
		site.SiteDir = "_build/site"
	}
	if site.Theme.Name == "" {
		site.Theme.Name = "readthedocs"
	}
}

func loadSettings() Settings {
	return Settings{
		ListenAddr:       ParseString(EnvListen, "127.0.0.1:8787"),
		LogLevel:         ParseString(EnvLogLevel, "info"),
		HistoryDB:        ParseString(EnvHistoryDB, ""),
		Strict:           ParseBool(EnvStrict, false),
		RateLimitEnabled: ParseBool(EnvRateLimit, true),
		RateLimitRPS:     ParseInt(EnvRateLimitRPS, 50),
		WatchDebounceMS:  ParseInt(EnvWatchDebounce, 500),
	}
}

// AbsDocsDir returns docs_dir resolved against the config file directory.
func (c AppConfig) AbsDocsDir() string { return c.absPath(c.Site.DocsDir) }

// AbsGensDir returns gens_dir resolved against the config file directory.
func (c AppConfig) AbsGensDir() string { return c.absPath(c.Site.GensDir) }

// AbsSiteDir returns site_dir resolved against the config file directory.
func (c AppConfig) AbsSiteDir() string { return c.absPath(c.Site.SiteDir) }

// AbsSearchPaths returns additional_search_paths resolved against the config
// file directory.
func (c AppConfig) AbsSearchPaths() []string {
	out := make([]string, 0, len(c.Site.AdditionalSearchPaths))
	for _, p := range c.Site.AdditionalSearchPaths {
		out = append(out, c.absPath(p))
	}
	return out
}

func (c AppConfig) absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}
