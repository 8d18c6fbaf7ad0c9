package chunker

import (
	"context"
	"log/slog"
	"time"

	"github.com/chunkpace/chunkpace/pkg/units"
)

// ReadLog holds telemetry for a single completed chunk read.
type ReadLog struct {
	Index         int
	Bytes         int64
	Duration      time.Duration
	Position      int64
	TotalLength   int64
	BudgetBytes   int64
	ThroughputBps float64
}

// LogRead emits a structured log entry with per-chunk read telemetry.
func LogRead(ctx context.Context, logger *slog.Logger, entry ReadLog) {
	logger.DebugContext(ctx, "chunker: chunk read",
		"chunk", entry.Index+1,
		"bytes", entry.Bytes,
		"duration_ms", entry.Duration.Milliseconds(),
		"position", entry.Position,
		"total", entry.TotalLength,
		"budget_mib", entry.BudgetBytes/units.MiB,
		"throughput_mibps", entry.ThroughputBps/units.MiB,
	)
}
