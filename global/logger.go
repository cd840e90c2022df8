package global

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const MONITOR_LOGS = "monitor_logs.txt"
const INTERNAL_ERRORS = "internal_errors.txt"

// NewLogger builds the process logger. With a log directory, regular output
// goes to the monitor log and internal errors to their own file.
func NewLogger(logDir string, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, errors.Wrap(err, "log directory")
		}
		config.OutputPaths = []string{filepath.Join(logDir, MONITOR_LOGS)}
		config.ErrorOutputPaths = []string{filepath.Join(logDir, INTERNAL_ERRORS)}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}
