package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewWritesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Service: "cartsync", Env: "test", Level: "info", Writer: &buf})

	Component(log, "engine").Info("mode changed", slog.String("mode", "offline"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cartsync", rec["service"])
	assert.Equal(t, "engine", rec["component"])
	assert.Equal(t, "offline", rec["mode"])
}

func TestComponentNilLogger(t *testing.T) {
	log := Component(nil, "x")
	require.NotNil(t, log)
	log.Info("discarded")
}
