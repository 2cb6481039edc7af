package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInitSetsLevel(t *testing.T) {
	Init("test-service", false)
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())

	Init("test-service", true)
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())
}
