package app

import "log/slog"

// flushTelemetry samples the fields at the end of each stats window and
// writes field and perf records.
func (a *App) flushTelemetry() {
	if !a.collector.ShouldFlush(a.frame) {
		return
	}
	fields := a.sim.Fields()
	if fields == nil {
		return
	}

	stats, err := a.collector.Flush(fields, a.frame, a.simTime, a.sim.SplatCount())
	if err != nil {
		slog.Error("failed to sample fields", "error", err)
		return
	}
	a.lastFields = &stats
	perfStats := a.perf.Stats()

	if a.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := a.outputManager.WriteFields(stats); err != nil {
		slog.Error("failed to write fields", "error", err)
	}
	if err := a.outputManager.WritePerf(perfStats, a.frame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
