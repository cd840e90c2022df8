package global

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesMonitorLog(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLogger(dir, true)
	require.NoError(t, err)
	log.Debug("socket opened")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, MONITOR_LOGS))
	require.NoError(t, err)
	assert.Contains(t, string(data), "socket opened")
}

func TestValidatorRejectsMissingFields(t *testing.T) {
	type payload struct {
		Token string `validate:"required"`
	}
	assert.Error(t, Validator.Struct(payload{}))
	assert.NoError(t, Validator.Struct(payload{Token: "t"}))
}
