package myaudio

import (
	"log/slog"
	"sync"

	"github.com/tphakala/pitchnet-go/internal/logging"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
)

// GetLogger returns the myaudio package logger.
func GetLogger() *slog.Logger {
	loggerOnce.Do(func() {
		logger = logging.ForModule("myaudio")
	})
	return logger
}
