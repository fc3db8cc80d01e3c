// Package logx is a small leveled logger in the teacher's plain-text,
// prefixed-diagnostic idiom (no external logging library appears anywhere
// in the example pack, so this ambient concern is built directly on fmt
// and time rather than imported).
package logx

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level orders log severity from most to least verbose.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}

// Logger writes leveled, timestamped lines to an underlying writer.
// The zero value is not usable; construct with New.
type Logger struct {
	out      io.Writer
	minLevel Level
}

// New creates a Logger writing to w, suppressing messages below minLevel.
func New(w io.Writer, minLevel Level) *Logger {
	return &Logger{out: w, minLevel: minLevel}
}

// Default returns a Logger writing to stderr at Info level, matching the
// CLI's default verbosity.
func Default() *Logger {
	return New(os.Stderr, Info)
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.minLevel {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.out, "%s [%s] %s\n", ts, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) { l.log(Debug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(Info, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(Warn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(Error, format, args...) }

// Fault logs an execution fault with its program counter, matching the
// "Division by zero error at PC=%08x" style diagnostics.
func (l *Logger) Fault(pc uint32, err error) {
	l.log(Error, "fault at PC=%08x: %v", pc, err)
}
