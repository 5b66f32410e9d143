package workers

import (
	"context"
	"log/slog"
	"time"
)

// InactivityEvictor is the slice of the chat service the sweeper needs.
type InactivityEvictor interface {
	EvictInactive(ctx context.Context, now time.Time) ([]string, error)
}

// SweepWorker periodically evicts sessions that stopped heartbeating.
// Eviction is unilateral: there is no cooperative cancellation, a silent
// session is simply removed and its identity flipped offline.
type SweepWorker struct {
	evictor  InactivityEvictor
	interval time.Duration
	log      *slog.Logger
}

func NewSweepWorker(evictor InactivityEvictor, interval time.Duration, log *slog.Logger) *SweepWorker {
	return &SweepWorker{evictor: evictor, interval: interval, log: log}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info("Starting presence sweep worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			evicted, err := w.evictor.EvictInactive(ctx, time.Now().UTC())
			if err != nil {
				w.log.Error("Presence sweep failed", "error", err)
				continue
			}
			if len(evicted) > 0 {
				w.log.Info("Evicted inactive sessions", "count", len(evicted))
			}
		}
	}
}
