package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	extra, recorded := observer.New(zapcore.DebugLevel)
	l, err := New(Config{Level: "error", Format: "json", Output: "stderr"}, extra)
	require.NoError(t, err)

	l.Info("tee works")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "tee works", recorded.All()[0].Message)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("to file")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNew_BadFilePath(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}
