package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/dyeflow/fluid"
	"github.com/pthm-cable/dyeflow/telemetry"
)

func TestPhaseRowsOrder(t *testing.T) {
	stats := telemetry.PerfStats{
		PhaseAvg: map[string]time.Duration{
			telemetry.PhaseRender:     2 * time.Millisecond,
			telemetry.PhaseProjection: 5 * time.Millisecond,
			telemetry.PhaseInput:      time.Microsecond,
		},
		PhasePct: map[string]float64{
			telemetry.PhaseRender:     25,
			telemetry.PhaseProjection: 62.5,
		},
	}

	rows := PhaseRows(stats)
	want := []string{telemetry.PhaseInput, telemetry.PhaseProjection, telemetry.PhaseRender}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, name := range want {
		if rows[i].Name != name {
			t.Errorf("row %d = %s, want %s", i, rows[i].Name, name)
		}
	}
	if rows[1].Pct != 62.5 || rows[1].Avg != 5*time.Millisecond {
		t.Errorf("unexpected projection row %+v", rows[1])
	}
}

func TestHUDLines(t *testing.T) {
	d := HUDData{
		FPS:           60,
		SimSize:       fluid.Size{Width: 228, Height: 128},
		DyeSize:       fluid.Size{Width: 910, Height: 512},
		SurfaceWidth:  1280,
		SurfaceHeight: 720,
		Splats:        12,
	}
	lines := d.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines without field stats, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "Sim: 228x128") || !strings.Contains(lines[1], "Dye: 910x512") {
		t.Errorf("unexpected resolution line %q", lines[1])
	}

	d.Fields = &telemetry.FieldStats{DyeMax: 1.5}
	if lines := d.Lines(); len(lines) != 4 || !strings.Contains(lines[3], "Dye max: 1.50") {
		t.Errorf("expected field stats line, got %v", lines)
	}

	if d.Status() != "Running" {
		t.Errorf("unexpected status %q", d.Status())
	}
	d.Paused = true
	if d.Status() != "PAUSED" {
		t.Errorf("unexpected status %q", d.Status())
	}
}

func TestClampPct(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{{-5, 0}, {42, 42}, {180, 100}} {
		if got := clampPct(tc.in); got != tc.want {
			t.Errorf("clampPct(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
