package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/schedule"
	"github.com/rs/zerolog"
)

// SweepFunc runs one sweep and reports how many items it handled
type SweepFunc func(ctx context.Context) (int, error)

// CronWorker is a background worker that runs a sweep on a cron schedule
type CronWorker struct {
	name     string
	schedule *schedule.Schedule
	location *time.Location
	sweep    SweepFunc
	logger   zerolog.Logger

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
	stopped bool
}

// CronWorkerConfig holds configuration for a cron worker
type CronWorkerConfig struct {
	Name     string
	Schedule *schedule.Schedule
	Location *time.Location
}

// NewCronWorker creates a new cron worker
func NewCronWorker(sweep SweepFunc, logger zerolog.Logger, config CronWorkerConfig) *CronWorker {
	if config.Location == nil {
		config.Location = time.UTC
	}

	return &CronWorker{
		name:     config.Name,
		schedule: config.Schedule,
		location: config.Location,
		sweep:    sweep,
		logger:   logger.With().Str("component", "cron_worker").Str("sweep", config.Name).Logger(),
		now:      time.Now,
		after:    time.After,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins waiting for the next scheduled run
func (w *CronWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Str("schedule", w.schedule.String()).
		Str("timezone", w.location.String()).
		Time("next_run", w.schedule.Next(w.now(), w.location)).
		Msg("Starting cron worker")

	go w.run(ctx)
}

// Stop gracefully stops the worker, waiting for a sweep in progress
func (w *CronWorker) Stop() {
	w.mu.Lock()
	if !w.running || w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping cron worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Cron worker stopped")
}

func (w *CronWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for {
		next := w.schedule.Next(w.now(), w.location)
		wait := next.Sub(w.now())
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-w.after(wait):
			w.RunNow(ctx)
		}
	}
}

// RunNow runs the sweep immediately, outside the schedule
func (w *CronWorker) RunNow(ctx context.Context) (int, error) {
	startTime := time.Now()
	w.logger.Debug().Msg("Starting sweep")

	count, err := w.sweep(ctx)
	elapsed := time.Since(startTime)
	if err != nil {
		w.logger.Error().Err(err).Dur("elapsed", elapsed).Msg("Sweep failed")
		return count, err
	}

	w.logger.Info().
		Int("count", count).
		Dur("elapsed", elapsed).
		Msg("Completed sweep")
	return count, nil
}

// IsRunning returns whether the worker is currently running
func (w *CronWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
