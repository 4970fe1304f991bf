package observability

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	metrics, err := NewMetrics()
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	if metrics == nil {
		t.Fatal("Expected metrics to be non-nil")
	}

	if err := metrics.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestRecordItemNilMetrics(t *testing.T) {
	t.Parallel()

	var metrics *Metrics

	// Should not panic
	metrics.RecordItem(context.Background(), "workflow", OutcomeSaved, 1, 0, 0.1)
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	metrics, err := NewMetrics()
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	metrics.RecordItem(ctx, "workflow", OutcomeSaved, 4, 1, 0.02)
	metrics.RecordItem(ctx, "pipeline", OutcomeFailed, 0, 2, 0.01)

	path := filepath.Join(t.TempDir(), "wf_exporter.prom")
	if err := metrics.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"wf_exporter_items_total",
		`outcome="saved"`,
		`outcome="failed"`,
		"wf_exporter_rewritten_paths_total",
		"wf_exporter_warnings_total",
		"wf_exporter_item_duration_seconds_bucket",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestGathererExposesFamilies(t *testing.T) {
	t.Parallel()

	metrics, err := NewMetrics()
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	metrics.RecordItem(context.Background(), "workflow", OutcomeSkipped, 0, 0, 0)

	families, err := metrics.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "wf_exporter_items_total" {
			found = true
		}
	}

	if !found {
		t.Error("wf_exporter_items_total not gathered")
	}
}
