// Package logging provides leveled logging on top of the standard logger.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level represents logging verbosity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps ERROR, WARN, INFO or DEBUG (any case) to a level; anything else is INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger writes messages at or below its level, tagged with a component
type Logger struct {
	level     Level
	component string
}

// New creates a logger for component at level
func New(component string, level Level) *Logger {
	return &Logger{level: level, component: component}
}

// FromEnv creates a logger for component at the LOG_LEVEL environment level
func FromEnv(component string) *Logger {
	return New(component, ParseLevel(os.Getenv("LOG_LEVEL")))
}

func (l *Logger) logf(level Level, tag, format string, args ...any) {
	if l.level < level {
		return
	}
	prefix := "[" + l.component + "] "
	if tag != "" {
		prefix = "[" + tag + "]" + prefix
	}
	log.Printf(prefix+format, args...)
}

func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, "ERROR", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LevelWarn, "WARN", format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LevelInfo, "", format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, "DEBUG", format, args...) }

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level Level) bool {
	return l.level >= level
}
