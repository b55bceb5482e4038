// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dilekce/dilekce-tui/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNew_FileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dilekce.log")
	logger, err := New(Options{Path: path, Level: "info", MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("dictionary loaded", zap.Int("entries", 42))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "dictionary loaded", entry["msg"])
	assert.Equal(t, float64(42), entry["entries"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_ConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Console: &buf})
	require.NoError(t, err)

	logger.Debug("mode changed", zap.String("mode", "yazdir"))
	assert.Contains(t, buf.String(), "mode changed")
	assert.Contains(t, buf.String(), "yazdir")
}

func TestNew_NoSinkIsNop(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DILEKCE_HOME", dir)

	cfg := config.Default()
	cfg.Logging.Level = "debug"
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dilekce.log"), opts.Path)
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, cfg.Logging.MaxSizeMB, opts.MaxSizeMB)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
