// Package logger provides terminal output for filescout tasks.
//
// ConsoleLogger writes timestamped, level-filtered lines with ANSI colors
// when the destination is a TTY. Printer adapts the task event stream
// (status, progress, log lines with severity accents) onto a ConsoleLogger.
// All implementations are safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log levels, most to least verbose.
const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes log lines to a writer with [HH:MM:SS] timestamps,
// minimum-level filtering and optional color output.
type ConsoleLogger struct {
	mu       sync.Mutex
	writer   io.Writer
	minLevel int
	color    bool
}

// NewConsoleLogger creates a ConsoleLogger writing to w. Messages below
// level are discarded; valid levels are debug, info, warn and error
// (case-insensitive), anything else defaults to info. Color output is
// enabled automatically when w is a TTY and NO_COLOR is not set.
func NewConsoleLogger(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:   w,
		minLevel: parseLevel(level),
		color:    writerIsTerminal(w),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// writerIsTerminal reports whether w is a terminal that should receive
// color codes. Respects the color library's NO_COLOR handling.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debugf logs a formatted debug-level message.
func (cl *ConsoleLogger) Debugf(format string, args ...any) {
	cl.write(levelDebug, nil, fmt.Sprintf(format, args...))
}

// Infof logs a formatted info-level message.
func (cl *ConsoleLogger) Infof(format string, args ...any) {
	cl.write(levelInfo, nil, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warn-level message in yellow.
func (cl *ConsoleLogger) Warnf(format string, args ...any) {
	cl.write(levelWarn, color.New(color.FgYellow), fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error-level message in red.
func (cl *ConsoleLogger) Errorf(format string, args ...any) {
	cl.write(levelError, color.New(color.FgRed), fmt.Sprintf(format, args...))
}

// Accented logs an info-level message with an explicit color accent.
// A nil accent writes plain text.
func (cl *ConsoleLogger) Accented(accent *color.Color, message string) {
	cl.write(levelInfo, accent, message)
}

func (cl *ConsoleLogger) write(level int, accent *color.Color, message string) {
	if cl.writer == nil || level < cl.minLevel {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	ts := time.Now().Format("15:04:05")
	if cl.color && accent != nil {
		message = accent.Sprint(message)
	}
	fmt.Fprintf(cl.writer, "[%s] %s\n", ts, message)
}

// ColorEnabled reports whether this logger emits ANSI colors.
func (cl *ConsoleLogger) ColorEnabled() bool {
	return cl.color
}
