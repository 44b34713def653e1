package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/dyeflow/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v, %v", om, err)
	}
	// Nil manager methods are no-ops.
	if err := om.WriteFields(FieldStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("expected empty dir")
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := int64(1); i <= 3; i++ {
		if err := om.WriteFields(FieldStats{Frame: i * 60, DyeMax: float64(i)}); err != nil {
			t.Fatalf("WriteFields: %v", err)
		}
		if err := om.WritePerf(PerfStats{AvgFrame: time.Millisecond}, i*60); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fields := readLines(t, filepath.Join(dir, "fields.csv"))
	if len(fields) != 4 {
		t.Fatalf("expected header + 3 rows in fields.csv, got %d lines", len(fields))
	}
	if !strings.HasPrefix(fields[0], "frame,sim_time,splats") {
		t.Errorf("unexpected fields header %q", fields[0])
	}
	if !strings.HasPrefix(fields[3], "180,") {
		t.Errorf("unexpected last row %q", fields[3])
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 4 {
		t.Fatalf("expected header + 3 rows in perf.csv, got %d lines", len(perf))
	}
	if !strings.Contains(perf[0], "projection_pct") {
		t.Errorf("unexpected perf header %q", perf[0])
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
