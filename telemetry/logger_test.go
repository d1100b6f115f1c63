package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Writer: &buf})

	logger.Info("pipeline started", String("stage", "source"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "pipeline started", line["message"])
	assert.Equal(t, "source", line["stage"])
}

func TestLoggerDropsBelowConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "error", Writer: &buf})

	logger.Debug("should not appear")

	assert.Empty(t, buf.String())
}

func TestLoggerWithModuleAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Writer: &buf}).WithModule("runner")

	logger.Info("bound")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "runner", line["module"])
}

func TestLoggerErrFieldSerializesMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Writer: &buf})

	logger.Error("stage failed", Err(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["error"])
}

func TestNopDiscardsEverything(t *testing.T) {
	logger := Nop()
	assert.NotPanics(t, func() {
		logger.WithModule("x").Info("hello", Int("n", 1))
	})
}
