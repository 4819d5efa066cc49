package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"animeapi/internal/config"
	"animeapi/internal/logging"
	"animeapi/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "animeapi.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello file")

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello file") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerPrefixesComponentAndStage(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(context.Background(), "link")
	logging.NewComponentLogger(logger, "linker").InfoContext(ctx, "linked", logging.Int("matched", 3))

	line := buf.String()
	if !strings.Contains(line, "linker[link]: linked") {
		t.Fatalf("expected component/stage prefix, got %q", line)
	}
	if !strings.Contains(line, "matched=3") {
		t.Fatalf("expected attribute, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithPlatform(ctx, "kaize")
	logger.InfoContext(ctx, "stage finished")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload[logging.FieldRunID] != "run-42" {
		t.Fatalf("expected run_id, got %v", payload)
	}
	if payload[logging.FieldPlatform] != "kaize" {
		t.Fatalf("expected platform, got %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(context.Background(), logger, "entries unlinked", logging.EventUnlinked,
		logging.String(logging.FieldImpact, "ids missing from coverage"))
	logging.ErrorWithContext(context.Background(), logger, "apply failed", logging.EventStageFailed, logging.Error(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	var warn map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &warn); err != nil {
		t.Fatalf("decode warn: %v", err)
	}
	if warn[logging.FieldEventType] != logging.EventUnlinked {
		t.Fatalf("expected event type, got %v", warn)
	}
	if warn[logging.FieldImpact] != "ids missing from coverage" {
		t.Fatalf("expected caller impact to win, got %v", warn[logging.FieldImpact])
	}
	if warn[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint, got %v", warn)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
