package logger_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"si-notice-monitor/internal/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNewWritesJSON(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "run.log")
	l, err := logger.New(logger.Config{Level: "info", OutputPaths: []string{out}})
	require.NoError(t, err)

	l.With(logger.String("run_id", "abc")).Info("snapshot saved", logger.Int("notices", 3))
	l.Debug("filtered out")
	l.Error("delivery failed", logger.Error(errors.New("boom")))
	_ = l.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"snapshot saved"`)
	assert.Contains(t, string(data), `"run_id":"abc"`)
	assert.Contains(t, string(data), `"error":"boom"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNop(t *testing.T) {
	t.Parallel()

	l := logger.NewNop()
	l.Info("ignored", logger.Bool("ok", true))
	assert.Same(t, l, l.With(logger.String("k", "v")))
	assert.NoError(t, l.Sync())
}
