package observability

import (
	"log/slog"
	"sync"

	"github.com/tphakala/pitchnet-go/internal/logging"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
)

// GetLogger returns the observability package logger.
func GetLogger() *slog.Logger {
	loggerOnce.Do(func() {
		logger = logging.ForModule("observability")
	})
	return logger
}
