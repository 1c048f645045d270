package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("WARN")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.Equal(t, zerolog.WarnLevel, log.Logger.GetLevel())

	SetLevel("chatty")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetupDefaultsFromMode(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	Setup("debug", "")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Setup("test", "")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Setup("debug", "error")
	assert.Equal(t, zerolog.ErrorLevel, Log.GetLevel())
}
