package logging

import (
	"bytes"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"evdash/internal/config"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogConfig{Level: "warn"})

	logger.Info().Msg("hidden")
	logger.Warn().Str("source", "ev.csv").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"source":"ev.csv"`)
	assert.Contains(t, out, `"time":`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestEchoLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, EchoLevel(zerolog.TraceLevel))
	assert.Equal(t, log.INFO, EchoLevel(zerolog.InfoLevel))
	assert.Equal(t, log.WARN, EchoLevel(zerolog.WarnLevel))
	assert.Equal(t, log.ERROR, EchoLevel(zerolog.FatalLevel))
	assert.Equal(t, log.OFF, EchoLevel(zerolog.Disabled))
}
