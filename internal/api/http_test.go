// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/docsmith/internal/config"
	"github.com/ManuGH/docsmith/internal/jobs"
	dslog "github.com/ManuGH/docsmith/internal/log"
	"github.com/ManuGH/docsmith/internal/sitemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHolder is a stub ConfigHolder for handler tests.
type fakeHolder struct {
	cfg       config.AppConfig
	reloadErr error
	reloads   int
}

func (f *fakeHolder) Current() config.AppConfig { return f.cfg }

func (f *fakeHolder) Reload(context.Context) error {
	f.reloads++
	return f.reloadErr
}

func testHolder(t *testing.T) *fakeHolder {
	t.Helper()
	return &fakeHolder{cfg: config.AppConfig{
		BaseDir: t.TempDir(),
		Site: config.SiteConfig{
			SiteName: "Test docs",
			DocsDir:  "sources",
			GensDir:  "gens",
			SiteDir:  "site",
		},
		Settings: config.Settings{
			ListenAddr:       "127.0.0.1:0",
			LogLevel:         "info",
			RateLimitEnabled: false,
		},
	}}
}

func stubBuild(status jobs.Status, err error) func(context.Context, config.AppConfig, jobs.Options) (*jobs.Status, *jobs.Artifacts, error) {
	return func(context.Context, config.AppConfig, jobs.Options) (*jobs.Status, *jobs.Artifacts, error) {
		if err != nil {
			return nil, nil, err
		}
		artifacts := &jobs.Artifacts{
			SiteMap: sitemap.Tree{Nodes: []sitemap.Node{
				{Title: "Home", Page: "index.md", Kind: sitemap.KindStatic},
			}},
		}
		return &status, artifacts, nil
	}
}

func TestHandleStatus(t *testing.T) {
	server := New(testHolder(t), nil)
	server.status = jobs.Status{
		LastRun: time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC),
		Pages:   6,
		Symbols: 24,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	server.handleStatus(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var status jobs.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, 6, status.Pages)
	assert.Equal(t, 24, status.Symbols)
}

func TestHandleSiteMap_NoBuildYet(t *testing.T) {
	server := New(testHolder(t), nil)

	rr := httptest.NewRecorder()
	server.handleSiteMap(rr, httptest.NewRequest(http.MethodGet, "/api/sitemap", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleBuild_Success(t *testing.T) {
	server := New(testHolder(t), nil)
	server.buildFn = stubBuild(jobs.Status{LastRun: time.Now(), Pages: 3}, nil)

	rr := httptest.NewRecorder()
	server.handleBuild(rr, httptest.NewRequest(http.MethodPost, "/api/build", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var status jobs.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, 3, status.Pages)

	// The site map is now available
	rr = httptest.NewRecorder()
	server.handleSiteMap(rr, httptest.NewRequest(http.MethodGet, "/api/sitemap", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandleBuild_Failure(t *testing.T) {
	server := New(testHolder(t), nil)
	server.buildFn = stubBuild(jobs.Status{}, errors.New("site map: boom"))

	rr := httptest.NewRecorder()
	server.handleBuild(rr, httptest.NewRequest(http.MethodPost, "/api/build", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "boom")
}

func TestHandleBuild_Conflict(t *testing.T) {
	server := New(testHolder(t), nil)
	server.building.Store(true)

	rr := httptest.NewRecorder()
	server.handleBuild(rr, httptest.NewRequest(http.MethodPost, "/api/build", nil))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandleReadyz(t *testing.T) {
	server := New(testHolder(t), nil)

	rr := httptest.NewRecorder()
	server.handleReadyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	server.status = jobs.Status{LastRun: time.Now()}
	rr = httptest.NewRecorder()
	server.handleReadyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_RebuildOnReload(t *testing.T) {
	server := New(testHolder(t), nil)

	var buildID atomic.Value
	server.buildFn = func(ctx context.Context, _ config.AppConfig, _ jobs.Options) (*jobs.Status, *jobs.Artifacts, error) {
		buildID.Store(dslog.BuildIDFromContext(ctx))
		return &jobs.Status{LastRun: time.Now(), Pages: 2}, &jobs.Artifacts{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan config.AppConfig, 1)
	go server.RebuildOnReload(ctx, ch)

	ch <- config.AppConfig{}

	require.Eventually(t, func() bool {
		return server.Status().Pages == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Builds triggered by reloads carry a correlation ID
	id, _ := buildID.Load().(string)
	assert.NotEmpty(t, id)
}

func TestHandleConfigReload(t *testing.T) {
	holder := testHolder(t)
	server := New(holder, nil)

	rr := httptest.NewRecorder()
	server.handleConfigReload(rr, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, holder.reloads)

	holder.reloadErr = errors.New("config validation failed")
	rr = httptest.NewRecorder()
	server.handleConfigReload(rr, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleHistory_Disabled(t *testing.T) {
	server := New(testHolder(t), nil)

	rr := httptest.NewRecorder()
	server.handleHistory(rr, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	server := New(testHolder(t), nil)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp2, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestSecureFileServer(t *testing.T) {
	holder := testHolder(t)
	gensDir := filepath.Join(holder.cfg.BaseDir, "gens")
	require.NoError(t, os.MkdirAll(gensDir, 0750))
	require.NoError(t, os.WriteFile(
		filepath.Join(gensDir, "extractors.md"), []byte("# Extractors\n"), 0600))

	server := New(holder, nil)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	// Served file
	resp, err := http.Get(ts.URL + "/pages/extractors.md")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Missing file
	resp2, err := http.Get(ts.URL + "/pages/missing.md")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)

	// Method not allowed
	resp3, err := http.Post(ts.URL+"/pages/extractors.md", "text/plain", nil)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)
}

func TestSecureFileServer_Traversal(t *testing.T) {
	holder := testHolder(t)
	require.NoError(t, os.MkdirAll(filepath.Join(holder.cfg.BaseDir, "gens"), 0750))
	server := New(holder, nil)

	req := httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil)
	req.URL.Path = "/../../etc/passwd" // bypass client-side cleaning
	rr := httptest.NewRecorder()
	server.secureFileServer().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
