package pitchnet

import (
	"log/slog"

	"github.com/tphakala/pitchnet-go/internal/logging"
)

// GetLogger returns the pitchnet logger.
func GetLogger() *slog.Logger {
	return logging.ForModule("pitchnet")
}
