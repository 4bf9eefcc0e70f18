package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_JSON(t *testing.T) {
	previous, previousLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	var buf bytes.Buffer
	initLogger(&buf, "places-review", "production", "warn")

	log.Info().Msg("hidden")
	log.Warn().Str("place_id", "p1").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "places-review", entry["service"])
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "p1", entry["place_id"])
}

func TestLoggerFromContext_PrefersRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf).With().Str("request_id", "r-1").Logger())

	LoggerFromContext(ctx).Error().Msg("boom")
	assert.Contains(t, buf.String(), `"request_id":"r-1"`)

	assert.NotNil(t, LoggerFromContext(context.Background()))
}
