package engine

import (
	"log/slog"

	"github.com/tphakala/pitchnet-go/internal/logging"
)

// GetLogger returns the engine logger.
func GetLogger() *slog.Logger {
	return logging.ForModule("engine")
}
