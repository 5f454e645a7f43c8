package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker runs a JobProcessor on a fixed interval. A run never outlives the
// interval, so a hung model call cannot pile runs up, and Stop cancels the
// run in flight.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the processor once, then on every tick until ctx is done or
// Stop is called.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	logger := slog.With(slog.String("worker", w.name))
	logger.Info("worker started", slog.Duration("interval", w.pollInterval))

	w.run(ctx, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped", slog.String("reason", w.stopReason()))
			return
		case <-ticker.C:
			w.run(ctx, logger)
		}
	}
}

func (w *Worker) run(ctx context.Context, logger *slog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, w.pollInterval)
	defer cancel()

	start := time.Now()
	err := w.processor.ProcessJobs(runCtx)
	if err == nil || ctx.Err() != nil {
		return
	}
	logger.Error("job run failed",
		slog.Any("error", err),
		slog.Duration("elapsed", time.Since(start)))
}

func (w *Worker) stopReason() string {
	select {
	case <-w.stopChan:
		return "stop signal"
	default:
		return "context cancelled"
	}
}

// Stop signals the loop and waits for it to exit. It is safe to call more
// than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
