// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/docsmith/internal/api"
	"github.com/ManuGH/docsmith/internal/config"
	"github.com/ManuGH/docsmith/internal/history"
	dslog "github.com/ManuGH/docsmith/internal/log"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "pydocmd.yml", "path to site config file (YAML)")
	oneShot := flag.Bool("build", false, "run a single build and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	dslog.Configure(dslog.Config{
		Level:   "info",
		Service: "docsmith",
		Version: version,
	})

	logger := dslog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration: strict file parse, env-driven daemon settings
	loader := config.NewLoader(*configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	// Re-configure logger with loaded configuration
	dslog.Configure(dslog.Config{
		Level:   cfg.Settings.LogLevel,
		Service: "docsmith",
		Version: version,
	})

	logger.Info().
		Str("event", "config.loaded").
		Str("path", *configPath).
		Str("site", cfg.Site.SiteName).
		Int("generate_pages", len(cfg.Site.Generate)).
		Msg("loaded configuration")

	var store *history.Store
	if cfg.Settings.HistoryDB != "" {
		store, err = history.NewStore(cfg.Settings.HistoryDB)
		if err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "history.open_failed").
				Str("path", cfg.Settings.HistoryDB).
				Msg("failed to open history database")
		}
		defer store.Close()
	}

	holder := config.NewHolder(cfg, loader, *configPath)
	server := api.New(holder, store)

	if err := server.RunInitialBuild(ctx); err != nil {
		if *oneShot {
			logger.Fatal().
				Err(err).
				Str("event", "build.failed").
				Msg("build failed")
		}
		// The daemon stays up so the operator can fix the config and
		// trigger a rebuild via the API or the file watcher.
		logger.Error().
			Err(err).
			Str("event", "build.initial_failed").
			Msg("initial build failed")
	}

	if *oneShot {
		status := server.Status()
		logger.Info().
			Str("event", "build.done").
			Int("pages", status.Pages).
			Int("unresolved", status.Unresolved).
			Msg("single build finished")
		return
	}

	if err := holder.StartWatcher(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.watcher_failed").
			Msg("failed to start config watcher")
	}
	defer holder.Stop()

	// Rebuild whenever a config reload goes through, so the served pages
	// track the file without a manual POST /api/build.
	reloads := make(chan config.AppConfig, 1)
	holder.RegisterListener(reloads)
	go server.RebuildOnReload(ctx, reloads)

	httpServer := &http.Server{
		Addr:              cfg.Settings.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("event", "http.listen").
			Str("addr", cfg.Settings.ListenAddr).
			Msg("API server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Str("event", "daemon.shutdown").Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().
				Err(err).
				Str("event", "http.serve_failed").
				Msg("API server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().
			Err(err).
			Str("event", "http.shutdown_failed").
			Msg("graceful shutdown failed")
	}
}
