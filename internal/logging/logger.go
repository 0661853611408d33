// Package logging wraps charmbracelet/log with a process-wide logger.
package logging

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger is a wrapper around the charmbracelet logger. Buffer is only set for
// loggers created by NewTestLogger.
type Logger struct {
	*log.Logger
	Buffer *bytes.Buffer
}

var (
	logger *Logger
	once   sync.Once
	mu     sync.RWMutex
)

// CreateLogger sets up the process logger. DEBUG=1 switches on caller
// reporting, timestamps and debug level.
func CreateLogger() {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		logger = &Logger{Logger: newBase(os.Stderr, os.Getenv("DEBUG") == "1")}
	})
}

func newBase(w io.Writer, debug bool) *log.Logger {
	if !debug {
		base := log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "pixtag"})
		base.SetLevel(log.InfoLevel)
		return base
	}
	base := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "pixtag",
	})
	base.SetLevel(log.DebugLevel)
	return base
}

// NewTestLogger returns a debug-level logger that writes into a buffer.
func NewTestLogger() *Logger {
	buf := new(bytes.Buffer)
	base := log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
	return &Logger{Logger: base, Buffer: buf}
}

// SetTestLogger replaces the process logger. Tests only.
func SetTestLogger(l *Logger) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// UseJSON switches the process logger to JSON lines, for log collectors in
// production.
func UseJSON() {
	GetLogger().SetFormatter(log.JSONFormatter)
}

// GetOutput returns what a test logger has written so far.
func (l *Logger) GetOutput() string {
	if l.Buffer == nil {
		return ""
	}
	return l.Buffer.String()
}

// GetLogger returns the process logger, creating it on first use.
func GetLogger() *Logger {
	CreateLogger()
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs debug messages if debug logging is enabled.
func Debug(msg interface{}, keyvals ...interface{}) {
	GetLogger().Debug(msg, keyvals...)
}

// Info logs informational messages.
func Info(msg interface{}, keyvals ...interface{}) {
	GetLogger().Info(msg, keyvals...)
}

// Warn logs warning messages.
func Warn(msg interface{}, keyvals ...interface{}) {
	GetLogger().Warn(msg, keyvals...)
}

// Error logs error messages.
func Error(msg interface{}, keyvals ...interface{}) {
	GetLogger().Error(msg, keyvals...)
}

// Fatal logs a fatal message and exits the program.
func Fatal(msg interface{}, keyvals ...interface{}) {
	GetLogger().Fatal(msg, keyvals...)
}
