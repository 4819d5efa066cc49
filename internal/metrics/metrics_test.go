package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"animeapi/internal/metrics"
)

func TestWriteTextfile(t *testing.T) {
	run := metrics.NewRun()
	run.ObserveStage("link_kaize", 1500*time.Millisecond)
	run.ObserveLink("kaize", 10, 3, 2)
	run.ObserveUnlinked("kaize", 1)
	run.ObserveChanges(4, 5, 6)
	run.ObserveRecords(42)
	run.AddKVOperations(7)
	run.Finish(time.Now().Add(-time.Second), true)

	path := filepath.Join(t.TempDir(), "nested", "animeapi.prom")
	if err := run.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`animeapi_stage_duration_seconds{stage="link_kaize"} 1.5`,
		`animeapi_linked_entries{pass="fuzzy",platform="kaize"} 3`,
		`animeapi_unlinked_entries{platform="kaize"} 1`,
		`animeapi_changes{type="delete"} 6`,
		`animeapi_records 42`,
		`animeapi_kv_operations_total 7`,
		`animeapi_run_success 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestWriteTextfileEmptyPathIsNoop(t *testing.T) {
	if err := metrics.NewRun().WriteTextfile(""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
