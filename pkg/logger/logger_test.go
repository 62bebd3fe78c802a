package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/magicformula/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func newBuffered(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithWriter(&config.Config{Env: "test", LogLevel: level, LogFormat: "json"}, &buf), &buf
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" DEBUG ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, levelOf(tt.input))
		})
	}
}

func TestLevelIsPerLogger(t *testing.T) {
	quiet, quietBuf := newBuffered("error")
	loud, loudBuf := newBuffered("debug")

	assert.Equal(t, zerolog.ErrorLevel, quiet.Level())
	assert.Equal(t, zerolog.DebugLevel, loud.Level())

	quiet.Info("dropped")
	loud.Debug("kept")

	assert.Empty(t, quietBuf.String())
	assert.Equal(t, "kept", decodeLine(t, loudBuf)["message"])
}

func TestServiceAndEnvFields(t *testing.T) {
	log, buf := newBuffered("info")

	log.Info("started")

	entry := decodeLine(t, buf)
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "started", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevels(t *testing.T) {
	log, buf := newBuffered("debug")

	tests := []struct {
		level string
		write func(string)
	}{
		{"debug", log.Debug},
		{"info", log.Info},
		{"warn", log.Warn},
		{"error", log.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.write("screen done")

			entry := decodeLine(t, buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "screen done", entry["message"])
		})
	}
}

func TestDerivedLoggers(t *testing.T) {
	log, buf := newBuffered("debug")

	log.WithModule("collector").
		WithField("sector", "Technology").
		WithFields(map[string]interface{}{
			"symbol": "AAPL",
			"price":  192.53,
		}).
		WithError(errors.New("quota exceeded")).
		Warn("fetch failed")

	entry := decodeLine(t, buf)
	assert.Equal(t, "collector", entry["module"])
	assert.Equal(t, "Technology", entry["sector"])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, 192.53, entry["price"])
	assert.Equal(t, "quota exceeded", entry["error"])

	buf.Reset()
	log.Info("parent untouched")
	entry = decodeLine(t, buf)
	assert.NotContains(t, entry, "module")
	assert.NotContains(t, entry, "symbol")
}

func TestWithErrorNil(t *testing.T) {
	log, buf := newBuffered("info")

	log.WithError(nil).Info("ok")

	assert.NotContains(t, decodeLine(t, buf), "error")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "development", LogLevel: "info", LogFormat: "Console"}, &buf)

	log.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithModule("x").WithField("k", "v").Error("discarded")
	})
}
