// Package logger provides the diagnostics logger used by kgls.
//
// Listing output goes to stdout through the renderers; everything the user
// should know about the run itself (orphaned entries, skipped paths, timing)
// goes through a ConsoleLogger, normally attached to stderr. Implementations
// are thread-safe.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/kgls/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// DefaultLevel is used when no level is configured. Orphan warnings are
// visible at this level.
const DefaultLevel = "warn"

// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines to a writer.
// Messages below the configured level are dropped. Levels are colorized
// when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	now         func() time.Time
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// An empty or invalid level falls back to DefaultLevel.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
		now:         time.Now,
	}
}

// isTerminal reports whether w is a TTY file. NO_COLOR disables colors
// through fatih/color's detection.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	_, ok := levelValues[strings.ToLower(strings.TrimSpace(level))]
	return ok
}

var levelValues = map[string]int{
	"trace": levelTrace,
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if _, ok := levelValues[normalized]; ok {
		return normalized
	}
	return DefaultLevel
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return levelValues[messageLevel] >= levelValues[cl.logLevel]
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := cl.now().Format("15:04:05")
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogSummary logs the statistics of one run at DEBUG level.
// Format: "[HH:MM:SS] [DEBUG] listed <n> entries (<r> roots, <o> orphans, <e> errors) in <d>"
func (cl *ConsoleLogger) LogSummary(stats models.RunStats) {
	cl.logWithLevel("DEBUG", fmt.Sprintf("listed %d entries (%d roots, %d orphans, %d errors) in %s",
		stats.Entries, stats.Roots, stats.Orphans, stats.Errors, formatDuration(stats.Duration)))
}

// formatDuration converts a time.Duration to a short human-readable string.
// Examples: "850µs", "12ms", "1.5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string)            {}
func (n *NoOpLogger) LogDebug(string)            {}
func (n *NoOpLogger) LogWarn(string)             {}
func (n *NoOpLogger) LogSummary(models.RunStats) {}
