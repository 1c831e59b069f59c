package common

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/bobmcallan/uc-mcp/internal/config"
)

func consoleLogger(level string) *Logger {
	return NewLoggerFromConfig(config.LoggingConfig{Level: level, Outputs: []string{"console"}})
}

func TestNewLoggerFromConfig_ReturnsNonNil(t *testing.T) {
	if logger := NewLoggerFromConfig(config.LoggingConfig{}); logger == nil {
		t.Fatal("NewLoggerFromConfig returned nil")
	}
}

func TestNewLoggerFromConfig_FluentAPI(t *testing.T) {
	logger := consoleLogger("error")
	logger.Info().Str("key", "value").Msg("test message")
	logger.Warn().Int("count", 42).Msg("warning")
	logger.Error().Err(nil).Msg("error message")
	logger.Debug().Bool("ok", true).Msg("debug")
}

func TestNewLoggerFromConfig_FileOutput(t *testing.T) {
	dir := t.TempDir()
	logger := NewLoggerFromConfig(config.LoggingConfig{
		Level:    "info",
		Outputs:  []string{"file"},
		FilePath: dir + "/uc-mcp.log",
	})
	if logger == nil {
		t.Fatal("NewLoggerFromConfig returned nil")
	}
	logger.Info().Str("tool", "list_catalogs").Msg("file output")
}

func TestNewLoggerWithOutput_WritesToProvidedWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)
	logger.Info().Str("key", "value").Msg("hello")

	if buf.String() == "" {
		t.Error("expected output to provided writer, got empty string")
	}
}

func TestNewSilentLogger_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	_ = NewLoggerWithOutput("info", &buf)
	buf.Reset()

	silent := NewSilentLogger()
	silent.Info().Str("key", "value").Msg("should be discarded")
	silent.Error().Msg("should be discarded")

	if buf.Len() > 0 {
		t.Errorf("silent logger wrote %d bytes to global writer: %s", buf.Len(), buf.String())
	}
}

// stdout is reserved for command output (uc-mcp tools, uc-mcp version).
func TestNewLoggerFromConfig_DoesNotWriteToStdout(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	logger := consoleLogger("info")
	logger.Info().Str("tool", "test").Msg("this must not go to stdout")

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	r.Close()

	if buf.Len() > 0 {
		t.Errorf("logger wrote %d bytes to stdout: %s", buf.Len(), buf.String())
	}
}

func TestWithCorrelationId_ReturnsNewLogger(t *testing.T) {
	logger := consoleLogger("error")
	correlated := logger.WithCorrelationId("req-123")

	if correlated == nil {
		t.Fatal("WithCorrelationId returned nil")
	}
	if correlated == logger {
		t.Error("WithCorrelationId should return a new Logger instance")
	}
	correlated.Info().Str("tool", "get_table").Msg("handler start")
}

func TestCorrelationIDFromContext(t *testing.T) {
	if _, ok := CorrelationIDFromContext(context.Background()); ok {
		t.Error("expected no correlation ID on empty context")
	}
	if _, ok := CorrelationIDFromContext(WithCorrelationID(context.Background(), "")); ok {
		t.Error("expected empty correlation ID to be ignored")
	}
	id, ok := CorrelationIDFromContext(WithCorrelationID(context.Background(), "req-1"))
	if !ok || id != "req-1" {
		t.Errorf("expected req-1, got %q (ok=%v)", id, ok)
	}
}

func TestForContext_TagsLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)

	logger.ForContext(WithCorrelationID(context.Background(), "req-abc")).Info().Msg("tagged")
	if !strings.Contains(buf.String(), "correlation_id=req-abc") {
		t.Errorf("expected correlation_id in output, got %q", buf.String())
	}
}

func TestForContext_WithoutIDReturnsSameLogger(t *testing.T) {
	logger := NewSilentLogger()
	if got := logger.ForContext(context.Background()); got != logger {
		t.Error("expected ForContext to return the receiver when no ID is present")
	}
}
