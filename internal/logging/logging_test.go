package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("warn"))
	assert.True(t, ValidLevel("DEBUG"))
	assert.False(t, ValidLevel("trace"))
}

func TestSetupWritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "nested", "awake.log")
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	logger, cleanup, err := Setup(path, level)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "pid", 42)
	level.Set(slog.LevelDebug)
	logger.Debug("now visible")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.EqualValues(t, 42, rec["pid"])
}

func TestLogPanic(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupTest(&buf)

	var recovered any
	func() {
		defer LogPanic("worker", func(r any) { recovered = r })
		panic("boom")
	}()

	assert.Equal(t, "boom", recovered)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "goroutine=worker")
}
