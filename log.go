package minerva

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger writes tagged progress lines ([INFO], [DEBUG], [WARN], [ERROR])
// to a single writer. Tags are colorized when the writer is a terminal.
//
// The zero value is not usable; create one with [NewLogger].
type Logger struct {
	mu sync.Mutex
	w  io.Writer

	// Verbose enables [DEBUG] lines. Off by default.
	Verbose bool
	// Quiet suppresses [INFO] lines. [WARN] and [ERROR] always print.
	Quiet bool
}

// NewLogger returns a Logger writing to w. A nil w defaults to stdout.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{w: w}
}

var (
	tagInfo  = color.New(color.FgGreen).Sprint("[INFO]")
	tagDebug = color.New(color.FgHiBlack).Sprint("[DEBUG]")
	tagWarn  = color.New(color.FgYellow).Sprint("[WARN]")
	tagError = color.New(color.FgRed).Sprint("[ERROR]")
)

func (l *Logger) printf(tag, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %s\n", tag, fmt.Sprintf(format, args...))
}

// Infof logs a progress line.
func (l *Logger) Infof(format string, args ...any) {
	if l.Quiet {
		return
	}
	l.printf(tagInfo, format, args...)
}

// Debugf logs a diagnostic line, shown only when Verbose is set.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.printf(tagDebug, format, args...)
}

// Warnf logs a warning line.
func (l *Logger) Warnf(format string, args ...any) {
	l.printf(tagWarn, format, args...)
}

// Errorf logs an error line.
func (l *Logger) Errorf(format string, args ...any) {
	l.printf(tagError, format, args...)
}
