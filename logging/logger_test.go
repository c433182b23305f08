package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/parade-state/config"
	"github.com/warp/parade-state/logging"
)

func TestNew_Levels(t *testing.T) {
	log, err := logging.New(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))

	dev, err := logging.New(config.LoggingConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}

func TestNew_DefaultsToInfo(t *testing.T) {
	log, err := logging.New(config.LoggingConfig{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := logging.New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
