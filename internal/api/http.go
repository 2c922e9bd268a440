// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api provides HTTP server functionality for the docsmith daemon.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/docsmith/internal/config"
	"github.com/ManuGH/docsmith/internal/history"
	"github.com/ManuGH/docsmith/internal/jobs"
	dslog "github.com/ManuGH/docsmith/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ConfigHolder allows hot configuration reloading without import cycles.
// Implemented by config.Holder.
type ConfigHolder interface {
	Current() config.AppConfig
	Reload(ctx context.Context) error
}

// Server represents the HTTP API server for docsmith.
type Server struct {
	mu       sync.RWMutex
	building atomic.Bool // serialize builds via atomic flag

	holder    ConfigHolder
	status    jobs.Status
	artifacts *jobs.Artifacts
	store     *history.Store // optional, nil when history is disabled

	// buildFn allows tests to stub the build operation; defaults to jobs.Build
	buildFn   func(context.Context, config.AppConfig, jobs.Options) (*jobs.Status, *jobs.Artifacts, error)
	startTime time.Time
}

// New creates a new API server.
func New(holder ConfigHolder, store *history.Store) *Server {
	return &Server{
		holder:    holder,
		store:     store,
		buildFn:   jobs.Build,
		startTime: time.Now(),
	}
}

// Routes builds the chi router with the full middleware stack.
func (s *Server) Routes() http.Handler {
	cfg := s.holder.Current()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	if cfg.Settings.RateLimitEnabled {
		r.Use(httprate.LimitByIP(cfg.Settings.RateLimitRPS, time.Second))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/sitemap", s.handleSiteMap)
		r.Get("/history", s.handleHistory)
		r.Post("/build", s.handleBuild)
		r.Post("/config/reload", s.handleConfigReload)
	})

	r.Handle("/pages/*", http.StripPrefix("/pages", s.secureFileServer()))

	return r
}

// RunInitialBuild performs the first build at startup and records it.
func (s *Server) RunInitialBuild(ctx context.Context) error {
	_, err := s.runBuild(ctx, jobs.DefaultOptions())
	return err
}

// RebuildOnReload consumes config reload notifications and rebuilds so the
// served artifacts track the config file. Notifications arriving while a
// build is running are dropped; the watcher debounce makes a follow-up write
// trigger another one.
func (s *Server) RebuildOnReload(ctx context.Context, ch <-chan config.AppConfig) {
	logger := dslog.WithComponentFromContext(ctx, "api")
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if !s.building.CompareAndSwap(false, true) {
				logger.Warn().
					Str("event", "build.reload_skipped").
					Msg("config reloaded while a build is running")
				continue
			}
			if _, err := s.runBuild(ctx, jobs.DefaultOptions()); err != nil {
				logger.Error().
					Err(err).
					Str("event", "build.reload_failed").
					Msg("rebuild after config reload failed")
			}
			s.building.Store(false)
		}
	}
}

// Status returns a copy of the current build status.
func (s *Server) Status() jobs.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// runBuild executes one build, updates status, metrics and history. Every
// build gets its own ID so its log lines can be correlated.
func (s *Server) runBuild(ctx context.Context, opts jobs.Options) (*jobs.Status, error) {
	ctx = dslog.ContextWithBuildID(ctx, uuid.NewString())

	cfg := s.holder.Current()
	opts.Strict = opts.Strict || cfg.Settings.Strict

	start := time.Now()
	status, artifacts, err := s.buildFn(ctx, cfg, opts)

	entry := history.Entry{
		StartedAt:  start,
		FinishedAt: time.Now(),
		DurationMS: time.Since(start).Milliseconds(),
	}

	if err != nil {
		recordBuildFailure("build_error")
		s.mu.Lock()
		s.status.Error = err.Error()
		s.mu.Unlock()

		entry.Error = err.Error()
		s.recordHistory(ctx, entry)
		return nil, err
	}

	s.mu.Lock()
	s.status = *status
	s.artifacts = artifacts
	s.mu.Unlock()

	recordBuildMetrics(time.Since(start), status.Pages, status.Unresolved)

	entry.Pages = status.Pages
	entry.Symbols = status.Symbols
	entry.Unresolved = status.Unresolved
	s.recordHistory(ctx, entry)

	return status, nil
}

func (s *Server) recordHistory(ctx context.Context, entry history.Entry) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Record(ctx, entry); err != nil {
		logger := dslog.WithComponentFromContext(ctx, "api")
		logger.Error().
			Err(err).
			Str("event", "history.record_failed").
			Msg("failed to record build history")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	ready := !s.status.LastRun.IsZero() && s.status.Error == ""
	s.mu.RUnlock()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSiteMap(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	artifacts := s.artifacts
	s.mu.RUnlock()

	if artifacts == nil {
		writeJSONError(w, http.StatusNotFound, "no build has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, artifacts.SiteMap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "build history is disabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		logger := dslog.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str("event", "history.query_failed").
			Msg("failed to query build history")
		writeJSONError(w, http.StatusInternalServerError, "failed to query history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if !s.building.CompareAndSwap(false, true) {
		writeJSONError(w, http.StatusConflict, "a build is already running")
		return
	}
	defer s.building.Store(false)

	opts := jobs.DefaultOptions()
	if r.URL.Query().Get("dry_run") == "true" {
		opts.DryRun = true
	}

	status, err := s.runBuild(r.Context(), opts)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	if err := s.holder.Reload(r.Context()); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
