package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-engine/observability"
)

// HeartbeatWorker periodically logs the process self-stats (RSS, CPU,
// OS status) together with the engine counters. It is the only place
// that reads gopsutil; everything else just bumps atomics.
type HeartbeatWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, stats *observability.Stats, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats, interval: interval}
}

// Run executes the main loop of the worker, logging health metrics on every tick.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			snapshot := w.stats.Snapshot()
			w.log.Info("Heartbeat",
				"pid", os.Getpid(),
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"dispatched", snapshot.Dispatched,
				"dropped", snapshot.Dropped,
				"messages_posted", snapshot.MessagesPosted,
				"privates_delivered", snapshot.PrivatesDelivered,
				"reactions_toggled", snapshot.ReactionsToggled,
				"connects", snapshot.Connects,
				"disconnects", snapshot.Disconnects,
			)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
