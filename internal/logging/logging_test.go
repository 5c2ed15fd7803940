package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func TestDebug_DisabledInProduction(t *testing.T) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(log.DebugLevel)

	appLogger := &AppLogger{
		logger: logger,
		debug:  false, // Production mode
	}

	appLogger.Debug("debug message that should not appear")

	output := buf.String()
	if strings.Contains(output, "debug message that should not appear") {
		t.Errorf("Expected debug message to be suppressed in production mode, got: %s", output)
	}
}

func TestRedirectToFile(t *testing.T) {
	logger, _ := NewTestLogger()

	logPath := filepath.Join(t.TempDir(), "launcher.log")
	if err := logger.RedirectToFile(logPath); err != nil {
		t.Fatalf("RedirectToFile failed: %v", err)
	}
	defer logger.Close()

	logger.Info("diverted record", "port", 8765)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "diverted record") {
		t.Errorf("Expected log file to contain the record, got: %s", content)
	}
	if logger.LogFile() == nil {
		t.Error("Expected LogFile() to return the attached file")
	}
}

func TestRedirectToFile_TruncatesPreviousRun(t *testing.T) {
	logger, _ := NewTestLogger()

	logPath := filepath.Join(t.TempDir(), "launcher.log")
	if err := os.WriteFile(logPath, []byte("stale content from last run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := logger.RedirectToFile(logPath); err != nil {
		t.Fatalf("RedirectToFile failed: %v", err)
	}
	defer logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "stale content") {
		t.Errorf("Expected previous run's content to be truncated, got: %s", content)
	}
}

func TestClose_WithoutRedirect(t *testing.T) {
	logger, _ := NewTestLogger()
	if err := logger.Close(); err != nil {
		t.Errorf("Close without an attached file should be a no-op, got: %v", err)
	}
	if logger.LogFile() != nil {
		t.Error("Expected LogFile() to be nil without a redirect")
	}
}

func TestSetDebug(t *testing.T) {
	logger, buf := NewTestLogger()
	logger.SetDebug(false)

	logger.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Expected debug record to be suppressed, got: %s", buf.String())
	}

	logger.SetDebug(true)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected debug record after SetDebug(true), got: %s", buf.String())
	}
}

func TestDebugObject(t *testing.T) {
	logger, buf := NewTestLogger()

	testObj := struct {
		Name  string
		Value int
	}{
		Name:  "test",
		Value: 42,
	}

	logger.DebugObject("test_object", testObj)

	output := buf.String()
	if !strings.Contains(output, "Object dump") {
		t.Errorf("Expected log output to contain 'Object dump', got: %s", output)
	}
	if !strings.Contains(output, "test_object") {
		t.Errorf("Expected log output to contain object name, got: %s", output)
	}
	if !strings.Contains(output, "test") {
		t.Errorf("Expected log output to contain object data, got: %s", output)
	}
}

func TestLogStateTransition(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogStateTransition("Handle", "Starting", "Running")

	output := buf.String()
	if !strings.Contains(output, "State transition") {
		t.Errorf("Expected log output to contain 'State transition', got: %s", output)
	}
	if !strings.Contains(output, "Handle") {
		t.Errorf("Expected log output to contain component name, got: %s", output)
	}
	if !strings.Contains(output, "Starting") {
		t.Errorf("Expected log output to contain 'from' state, got: %s", output)
	}
	if !strings.Contains(output, "Running") {
		t.Errorf("Expected log output to contain 'to' state, got: %s", output)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	// Reset the singleton for testing
	defaultLogger = nil
	once = sync.Once{}

	// Set debug mode for testing
	os.Setenv("DEBUG", "1")
	defer os.Unsetenv("DEBUG")

	// Test that package-level functions work
	Info("package level info")
	Warn("package level warn")
	Error("package level error")
	Debug("package level debug")

	// If we get here without panics, the package-level functions work
}

func TestGetDefault_Singleton(t *testing.T) {
	// Reset the singleton for testing
	defaultLogger = nil
	once = sync.Once{}

	logger1 := GetDefault()
	logger2 := GetDefault()

	if logger1 != logger2 {
		t.Error("Expected GetDefault() to return the same instance (singleton)")
	}
}

// Benchmark tests
func BenchmarkInfo(b *testing.B) {
	logger, _ := NewTestLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}

func BenchmarkDebug(b *testing.B) {
	logger, _ := NewTestLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("benchmark debug message", "iteration", i)
	}
}
