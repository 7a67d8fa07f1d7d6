package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSetCapturesEvents(t *testing.T) {
	prev := Logger
	defer Set(prev)
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	Set(zerolog.New(&buf))
	Warn().Str("lang", "ru").Msg("fallback")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"lang":"ru"`)
}

func TestLevelHelpers(t *testing.T) {
	prev := Logger
	defer Set(prev)
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	Set(zerolog.New(&buf))
	Debug().Msg("d")
	Info().Msg("i")
	Error().Msg("e")

	for _, level := range []string{"debug", "info", "error"} {
		assert.Contains(t, buf.String(), `"level":"`+level+`"`)
	}
}
