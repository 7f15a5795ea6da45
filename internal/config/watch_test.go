package config

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vawter.tech/stopper"
)

func TestWatchReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, Default()))

	sctx := stopper.WithContext(context.Background())
	t.Cleanup(func() {
		sctx.Stop(time.Second)
		_ = sctx.Wait()
	})

	var (
		mu     sync.Mutex
		levels []string
	)
	require.NoError(t, Watch(sctx, path, func(cfg *Config, err error) {
		if err != nil || cfg == nil {
			return
		}
		mu.Lock()
		levels = append(levels, cfg.LogLevel)
		mu.Unlock()
	}))

	updated := Default()
	updated.LogLevel = "debug"
	require.NoError(t, Save(path, updated))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(levels) > 0 && levels[len(levels)-1] == "debug"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchMissingDirectory(t *testing.T) {
	sctx := stopper.WithContext(context.Background())
	defer sctx.Stop(0)

	err := Watch(sctx, filepath.Join(t.TempDir(), "nope", "config.yaml"), func(*Config, error) {})
	assert.Error(t, err)
}
