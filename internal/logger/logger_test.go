package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe routes the package logger to an in-memory core for one test.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	previous := current.Load()
	current.Store(zap.New(core).Sugar())
	t.Cleanup(func() {
		current.Store(previous)
		level.SetLevel(zapcore.InfoLevel)
	})
	return logs
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t)
	SetLevel("WARN")

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn 3", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "error 4", entries[1].Message)
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	logs := observe(t)
	SetLevel("debug")
	SetLevel("verbose")

	Debug("still debug")
	assert.Equal(t, 1, logs.Len())
	assert.True(t, Enabled(LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warn", LevelWarn, true},
		{"ERROR", LevelError, true},
		{"trace", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConfigure_JSONFile(t *testing.T) {
	previous := current.Load()
	t.Cleanup(func() {
		current.Store(previous)
		level.SetLevel(zapcore.InfoLevel)
	})

	path := filepath.Join(t.TempDir(), "store.log")
	require.NoError(t, Configure(Config{Level: "INFO", Format: "json", Output: path}))

	Info("logon from %s", "/cn=alice")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"logon from /cn=alice"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestConfigure_Invalid(t *testing.T) {
	assert.Error(t, Configure(Config{Level: "loud"}))
	assert.Error(t, Configure(Config{Format: "xml"}))
}
