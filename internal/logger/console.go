// Package logger provides the diagnostic channel for grape.
//
// Diagnostics (unreadable files, per-line match failures, enumeration
// problems) are written to their own writer, normally os.Stderr, and never
// mixed into match output. The logger is safe for concurrent use by all
// search workers.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Prefix starts every diagnostic line.
const Prefix = "grape"

// ConsoleLogger writes levelled diagnostics to a writer.
// Format: "grape: <message>" for warnings and errors, "grape: [LEVEL] <message>"
// for lower levels. Level tags are coloured when writing to a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "warn".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// fatih/color already folds in TTY detection and NO_COLOR
		return !color.NoColor
	}
	return false
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if ValidLevel(normalized) {
		return normalized
	}
	return "warn"
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelWarn
	}
}

// Level returns the configured minimum level.
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// Tracef logs a trace-level message.
func (cl *ConsoleLogger) Tracef(format string, args ...interface{}) {
	cl.logWithLevel("trace", format, args...)
}

// Debugf logs a debug-level message.
func (cl *ConsoleLogger) Debugf(format string, args ...interface{}) {
	cl.logWithLevel("debug", format, args...)
}

// Infof logs an info-level message.
func (cl *ConsoleLogger) Infof(format string, args ...interface{}) {
	cl.logWithLevel("info", format, args...)
}

// Warnf logs a warning.
func (cl *ConsoleLogger) Warnf(format string, args ...interface{}) {
	cl.logWithLevel("warn", format, args...)
}

// Errorf logs an error-level message. Error is the highest level, so these
// are never filtered out; per-file search failures use it.
func (cl *ConsoleLogger) Errorf(format string, args ...interface{}) {
	cl.logWithLevel("error", format, args...)
}

func (cl *ConsoleLogger) logWithLevel(level string, format string, args ...interface{}) {
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	// Format outside the lock; only the write is serialised.
	formatted := cl.format(level, fmt.Sprintf(format, args...))

	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(formatted))
}

func (cl *ConsoleLogger) format(level, message string) string {
	prefix := Prefix + ":"
	tag := ""
	if logLevelToInt(level) < levelWarn {
		tag = "[" + strings.ToUpper(level) + "] "
	}

	if cl.colorOutput {
		var c *color.Color
		switch level {
		case "trace":
			c = color.New(color.FgHiBlack)
		case "debug":
			c = color.New(color.FgCyan)
		case "info":
			c = color.New(color.FgBlue)
		case "warn":
			c = color.New(color.FgYellow)
		case "error":
			c = color.New(color.FgRed)
		}
		if c != nil {
			prefix = c.Sprint(prefix)
			if tag != "" {
				tag = c.Sprint(strings.TrimSuffix(tag, " ")) + " "
			}
		}
	}

	return fmt.Sprintf("%s %s%s\n", prefix, tag, message)
}

// NoOpLogger discards all messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (*NoOpLogger) Tracef(string, ...interface{}) {}
func (*NoOpLogger) Debugf(string, ...interface{}) {}
func (*NoOpLogger) Infof(string, ...interface{})  {}
func (*NoOpLogger) Warnf(string, ...interface{})  {}
func (*NoOpLogger) Errorf(string, ...interface{}) {}
