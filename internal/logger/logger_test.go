package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", FormatJSON)
	require.NoError(t, err)

	l.Debug().Str("import_id", "imp_1").Msg("row imported")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "imp_1", entry["import_id"])
	assert.Equal(t, "row imported", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", FormatJSON)
	require.NoError(t, err)

	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "", FormatConsole)
	require.NoError(t, err)

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_Errors(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(&buf, "loud", FormatJSON)
	assert.Error(t, err)

	_, err = New(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", FormatJSON)
	require.NoError(t, err)

	ctx := WithContext(context.Background(), l)
	got := FromContext(ctx)
	got.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	// No logger in context: output is discarded.
	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
}
