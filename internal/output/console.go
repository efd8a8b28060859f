// Package output provides the leveled console logger used across the
// rate-control subsystem. Warnings about configuration fallbacks and
// trace exhaustion are part of the subsystem's contract, so wording
// passed to the logger is preserved verbatim.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Level controls which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the fixed-width tag printed for the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO "
	case LevelWarn:
		return "WARN "
	case LevelError:
		return "ERROR"
	default:
		return "?????"
	}
}

// Logger writes timestamped, leveled lines to a single writer.
//
// It is safe for concurrent use. Color is applied to the level tag only,
// and only when the writer is a terminal.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	scheme *ColorScheme
}

// New creates a logger writing to w at the given minimum level.
// Color is enabled only when w is a TTY.
func New(w io.Writer, level Level) *Logger {
	scheme := NoColorScheme()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		scheme = DefaultColorScheme()
	}
	return &Logger{w: w, level: level, scheme: scheme}
}

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
)

// Default returns the process-wide logger, created on first use.
// It writes to stderr at info level; PACELINE_DEBUG=1 lowers it to debug.
func Default() *Logger {
	defaultOnce.Do(func() {
		level := LevelInfo
		if os.Getenv("PACELINE_DEBUG") == "1" {
			level = LevelDebug
		}
		defaultLogger = New(os.Stderr, level)
	})
	return defaultLogger
}

// SetLevel changes the minimum level emitted by the logger.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	tag := level.String()
	switch level {
	case LevelWarn:
		tag = l.scheme.Warn.Sprint(tag)
	case LevelError:
		tag = l.scheme.Error.Sprint(tag)
	case LevelDebug:
		tag = l.scheme.Debug.Sprint(tag)
	default:
		tag = l.scheme.Info.Sprint(tag)
	}
	fmt.Fprintf(l.w, "%s %s %s\n", time.Now().Format("15:04:05.000"), tag, fmt.Sprintf(format, args...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}
