package logging

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// AppLogger wraps charmbracelet/log for the launcher.
//
// Standard output is reserved for MCP protocol frames, so the logger never
// writes there: it targets stderr until RedirectToFile attaches the
// diagnostic log file, after which every record goes to the file.
type AppLogger struct {
	mu      sync.Mutex
	logger  *log.Logger
	logFile *os.File
	debug   bool
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the default logger instance (singleton-like for convenience)
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

// Package-level convenience functions for quick logging
func Info(msg string, keyvals ...interface{}) {
	GetDefault().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	GetDefault().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	GetDefault().Error(msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

func NewAppLogger() *AppLogger {
	debug := os.Getenv("DEBUG") != ""

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "yunshu",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	return &AppLogger{
		logger: logger,
		debug:  debug,
	}
}

// RedirectToFile points all subsequent log records at the given file,
// truncating any previous run's content. The launcher calls this before
// spawning the subprocess so that nothing it logs can race protocol frames
// on the inherited descriptors.
func (al *AppLogger) RedirectToFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	al.mu.Lock()
	defer al.mu.Unlock()
	if al.logFile != nil {
		al.logFile.Close()
	}
	al.logFile = f
	al.logger.SetOutput(f)
	return nil
}

// LogFile returns the attached diagnostic file, or nil when logging still
// targets stderr. Spawn hands this same file to the subprocess's stderr.
func (al *AppLogger) LogFile() *os.File {
	al.mu.Lock()
	defer al.mu.Unlock()
	return al.logFile
}

// SetDebug raises or lowers the level at runtime (the --debug flag arrives
// after construction).
func (al *AppLogger) SetDebug(debug bool) {
	al.mu.Lock()
	defer al.mu.Unlock()
	al.debug = debug
	if debug {
		al.logger.SetLevel(log.DebugLevel)
		al.logger.SetReportCaller(true)
	} else {
		al.logger.SetLevel(log.InfoLevel)
	}
}

// Close releases the diagnostic file if one was attached.
func (al *AppLogger) Close() error {
	al.mu.Lock()
	defer al.mu.Unlock()
	if al.logFile == nil {
		return nil
	}
	err := al.logFile.Close()
	al.logFile = nil
	al.logger.SetOutput(os.Stderr)
	return err
}

// Log application events
func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// Pretty print any object
func (al *AppLogger) DebugObject(name string, obj interface{}) {
	if al.debug {
		al.logger.Debug("Object dump", "name", name, "object", fmt.Sprintf("%+v", obj))
	}
}

// Log state transitions for debugging
func (al *AppLogger) LogStateTransition(component, from, to string) {
	if al.debug {
		al.logger.Debug("State transition",
			"component", component,
			"from", from,
			"to", to,
		)
	}
}

// Testing Helper - NewTestLogger creates a logger that writes to a buffer for testing
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false, // Easier to test without timestamps
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{
		logger: logger,
		debug:  true,
	}, &buf
}
