// Package logging sets up the structured and human-readable loggers for the application.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

var (
	mu                  sync.RWMutex
	structuredLogger    *slog.Logger
	humanReadableLogger *slog.Logger
)

// replaceLevelNames customizes level labels for the TRACE and FATAL extensions.
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

func newLoggers(structuredOut, humanOut io.Writer, level slog.Level) (structured, human *slog.Logger) {
	structured = slog.New(slog.NewJSONHandler(structuredOut, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	human = slog.New(slog.NewTextHandler(humanOut, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	}))
	return structured, human
}

// Init initializes the logging system with structured and human-readable loggers.
// Structured logs go to stdout as JSON, human-readable logs to stderr as text.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	mu.Lock()
	structuredLogger, humanReadableLogger = newLoggers(os.Stdout, os.Stderr, level)
	slog.SetDefault(structuredLogger)
	mu.Unlock()
}

// SetLevel reinitializes both loggers at the given minimum level.
func SetLevel(level slog.Level) {
	mu.Lock()
	structuredLogger, humanReadableLogger = newLoggers(os.Stdout, os.Stderr, level)
	slog.SetDefault(structuredLogger)
	mu.Unlock()
}

// Structured returns the JSON logger, initializing defaults if Init was not called.
func Structured() *slog.Logger {
	mu.RLock()
	l := structuredLogger
	mu.RUnlock()
	if l == nil {
		Init(false)
		mu.RLock()
		l = structuredLogger
		mu.RUnlock()
	}
	return l
}

// HumanReadable returns the text logger, initializing defaults if Init was not called.
func HumanReadable() *slog.Logger {
	mu.RLock()
	l := humanReadableLogger
	mu.RUnlock()
	if l == nil {
		Init(false)
		mu.RLock()
		l = humanReadableLogger
		mu.RUnlock()
	}
	return l
}

// ForModule returns the structured logger tagged with a module attribute.
func ForModule(name string) *slog.Logger {
	return Structured().With("module", name)
}
