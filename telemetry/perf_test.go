package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseProjection)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseAdvection)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()

	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration")
	}
	if stats.MinFrame > stats.AvgFrame || stats.AvgFrame > stats.MaxFrame {
		t.Errorf("expected min <= avg <= max, got %v %v %v", stats.MinFrame, stats.AvgFrame, stats.MaxFrame)
	}
	if _, ok := stats.PhaseAvg[PhaseProjection]; !ok {
		t.Error("expected projection phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseAdvection]; !ok {
		t.Error("expected advection phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseVorticity)
		time.Sleep(10 * time.Microsecond)
		pc.EndFrame()
	}

	if pc.sampleCount != 5 {
		t.Errorf("expected window capped at 5 samples, got %d", pc.sampleCount)
	}
	if pc.Stats().AvgFrame <= 0 {
		t.Error("expected positive average frame duration after window filled")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseInput)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(500 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	inputPct := stats.PhasePct[PhaseInput]
	renderPct := stats.PhasePct[PhaseRender]

	if renderPct <= inputPct {
		t.Errorf("expected render phase (%v%%) > input phase (%v%%)", renderPct, inputPct)
	}
	if total := inputPct + renderPct; total > 100.0001 {
		t.Errorf("phase percentages sum to %v%%", total)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgFrame != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_PresentTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordPresent()
	time.Sleep(16 * time.Millisecond)
	pc.RecordPresent()

	stats := pc.Stats()

	if stats.PresentInterval < 15*time.Millisecond {
		t.Errorf("expected present interval >= 15ms, got %v", stats.PresentInterval)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with a 16ms interval, got %v", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgFrame: 2 * time.Millisecond,
		PhasePct: map[string]float64{
			PhaseProjection: 60,
			PhaseRender:     25,
		},
	}
	row := stats.ToCSV(300)
	if row.Frame != 300 || row.AvgFrameUS != 2000 {
		t.Errorf("unexpected row %+v", row)
	}
	if row.ProjectionPct != 60 || row.RenderPct != 25 || row.AdvectionPct != 0 {
		t.Errorf("unexpected phase columns %+v", row)
	}
}
