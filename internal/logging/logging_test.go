package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pizza-nz/food-ordering/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.Log{Level: "info", Format: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("order placed", "lines", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order placed", entry["msg"])
	assert.Equal(t, float64(2), entry["lines"])
}

func TestNewWithWriter_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.Log{Level: "warn", Format: "text"}, &buf)

	logger.Info("skipped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}
