package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker logs process self-stats (RSS, CPU, live sessions) on a
// fixed interval so an operator can eyeball the server without extra
// tooling.
type TelemetryWorker struct {
	sessions func() int
	interval time.Duration
	log      *slog.Logger
}

func NewTelemetryWorker(sessions func() int, interval time.Duration, log *slog.Logger) *TelemetryWorker {
	return &TelemetryWorker{sessions: sessions, interval: interval, log: log}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker", "interval", w.interval)
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
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("Process stats",
				"ram_bytes", rss,
				"cpu_percent", cpu,
				"sessions", w.sessions())
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
