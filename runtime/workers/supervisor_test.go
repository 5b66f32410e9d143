package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	runs      atomic.Int32
	panicOnce atomic.Bool
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	if w.panicOnce.CompareAndSwap(true, false) {
		panic("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestSupervisorRestartsPanickedWorker(t *testing.T) {
	req := require.New(t)
	worker := &countingWorker{}
	worker.panicOnce.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(slog.Default()).Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	req.Eventually(func() bool {
		return worker.runs.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond, "worker should be restarted after the panic")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after context cancellation")
	}
}

type oneShotWorker struct {
	runs atomic.Int32
}

func (w *oneShotWorker) Run(context.Context) error {
	w.runs.Add(1)
	return nil
}

func TestSupervisorDoesNotRestartCleanWorker(t *testing.T) {
	req := require.New(t)
	worker := &oneShotWorker{}

	sup := NewSupervisor(slog.Default()).Add(worker)
	sup.Run(context.Background())

	req.Equal(int32(1), worker.runs.Load())
}

func TestSweepWorkerStopsOnCancel(t *testing.T) {
	req := require.New(t)
	worker := NewSweepWorker(evictorFunc(func(context.Context, time.Time) ([]string, error) {
		return nil, nil
	}), 10*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweep worker did not stop")
	}
}

type evictorFunc func(ctx context.Context, now time.Time) ([]string, error)

func (f evictorFunc) EvictInactive(ctx context.Context, now time.Time) ([]string, error) {
	return f(ctx, now)
}
