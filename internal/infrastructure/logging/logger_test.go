package logging

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

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Named("session").Workspace("ws_1").Info("created", zap.Int("files", 3))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"message":"created"`)
	assert.Contains(t, out, `"logger":"session"`)
	assert.Contains(t, out, `"workspace":"ws_1"`)
	assert.Contains(t, out, `"files":3`)
	assert.NotContains(t, out, "hidden")
}

func TestChildLoggers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Workspace("ws_2").With(zap.String("op", "select")).Info("applied")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ws_2", fields["workspace"])
	assert.Equal(t, "select", fields["op"])
}

func TestNopAndDefaults(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Info("discarded")
	})
	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewDevelopment())
}
