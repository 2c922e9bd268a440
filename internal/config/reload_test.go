// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const minimalConfig = `site_name: Reload test
pages:
  - Home: index.md
`

func newTestHolder(t *testing.T) (*Holder, string) {
	t.Helper()
	path := writeConfig(t, minimalConfig)

	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	return NewHolder(cfg, loader, path), path
}

func TestHolder_Reload_AppliesNewConfig(t *testing.T) {
	holder, path := newTestHolder(t)

	updated := `site_name: Renamed docs
pages:
  - Home: index.md
  - Guide: guide.md
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0600))

	require.NoError(t, holder.Reload(context.Background()))

	cfg := holder.Current()
	assert.Equal(t, "Renamed docs", cfg.Site.SiteName)
	assert.Len(t, cfg.Site.Pages, 2)
}

func TestHolder_Reload_InvalidKeepsOldConfig(t *testing.T) {
	holder, path := newTestHolder(t)
	before := holder.Current()

	// Unknown key fails the strict parse
	require.NoError(t, os.WriteFile(path, []byte("site_name: X\nbogus_key: 1\npages:\n  - Home: index.md\n"), 0600))

	err := holder.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")

	if diff := cmp.Diff(before.Site, holder.Current().Site); diff != "" {
		t.Errorf("config changed after failed reload (-before +after):\n%s", diff)
	}
}

func TestHolder_Reload_NotifiesListeners(t *testing.T) {
	holder, path := newTestHolder(t)

	ch := make(chan AppConfig, 1)
	holder.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("site_name: Listener test\npages:\n  - Home: index.md\n"), 0600))
	require.NoError(t, holder.Reload(context.Background()))

	select {
	case cfg := <-ch:
		assert.Equal(t, "Listener test", cfg.Site.SiteName)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestHolder_Watcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Setenv(EnvWatchDebounce, "10")
	holder, path := newTestHolder(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, holder.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("site_name: Watched docs\npages:\n  - Home: index.md\n"), 0600))

	require.Eventually(t, func() bool {
		return holder.Current().Site.SiteName == "Watched docs"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
}
