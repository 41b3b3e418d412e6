package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultWorkers        = 5
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = time.Second
)

// Config controls worker count, retry policy and throttling
type Config struct {
	Workers int
	// MaxAttempts counts deliveries, so 3 means one try plus two retries
	MaxAttempts    int
	RetryBaseDelay time.Duration
	// Throttle is optional. Jobs over their key's ceiling are deferred
	// without consuming an attempt.
	Throttle *jobs.KeyedThrottle
}

// Queue is an in-memory, at-least-once job queue. It is safe for concurrent
// use and suits single-instance deployments. Pending jobs do not survive a
// restart; the next sweep re-emits anything still due.
type Queue struct {
	cfg    Config
	store  jobs.JobStore
	logger zerolog.Logger

	mu      sync.Mutex
	pending []*jobs.RecurringTransactionJob
	closed  bool

	signal    chan struct{}
	closeChan chan struct{}
	wg        sync.WaitGroup
}

// NewQueue creates a new in-memory job queue. store may be nil.
func NewQueue(cfg Config, store jobs.JobStore, logger zerolog.Logger) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return &Queue{
		cfg:       cfg,
		store:     store,
		logger:    logger.With().Str("component", "job_queue").Logger(),
		signal:    make(chan struct{}, 1),
		closeChan: make(chan struct{}),
	}
}

// PublishRecurring enqueues the whole batch or, on error, none of it.
func (q *Queue) PublishRecurring(ctx context.Context, batch []*jobs.RecurringTransactionJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	now := time.Now()
	for _, job := range batch {
		if job.JobID == "" {
			job.JobID = uuid.New().String()
		}
		job.Status = jobs.JobStatusPending
		if job.CreatedAt.IsZero() {
			job.CreatedAt = now
		}
	}

	if q.store != nil {
		for i, job := range batch {
			if err := q.store.SaveJob(ctx, job); err != nil {
				q.forget(batch[:i])
				return fmt.Errorf("failed to save job: %w", err)
			}
		}
	}

	q.pending = append(q.pending, batch...)
	q.notify()
	return nil
}

// forget drops the status records of a batch that was never enqueued
func (q *Queue) forget(saved []*jobs.RecurringTransactionJob) {
	ctx := context.Background()
	for _, job := range saved {
		if err := q.store.DeleteJob(ctx, job.JobID); err != nil {
			q.logger.Warn().Err(err).Str("job_id", job.JobID).Msg("Failed to remove job record of rejected batch")
		}
	}
}

// Start launches the workers. It returns immediately.
func (q *Queue) Start(ctx context.Context, handler jobs.Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	q.logger.Info().Int("workers", q.cfg.Workers).Int("max_attempts", q.cfg.MaxAttempts).Msg("Job queue started")
	return nil
}

// Len returns the number of jobs waiting for a worker
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue) next() (*jobs.RecurringTransactionJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || len(q.pending) == 0 {
		return nil, false
	}
	job := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	if len(q.pending) > 0 {
		q.notify()
	}
	return job, true
}

func (q *Queue) worker(ctx context.Context, handler jobs.Handler) {
	defer q.wg.Done()

	for {
		job, ok := q.next()
		if ok {
			q.processJob(ctx, job, handler)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case <-q.signal:
		}
	}
}

// processJob runs one delivery and decides between done, retry and failed
func (q *Queue) processJob(ctx context.Context, job *jobs.RecurringTransactionJob, handler jobs.Handler) {
	if q.cfg.Throttle != nil {
		if delay := q.cfg.Throttle.Reserve(job.ThrottleKey()); delay > 0 {
			q.logger.Debug().
				Str("job_id", job.JobID).
				Str("user_id", job.UserID).
				Dur("delay", delay).
				Msg("Job throttled, deferring")
			q.requeueAfter(delay, job)
			return
		}
	}

	job.Attempt++
	job.Status = jobs.JobStatusRunning
	job.Error = ""
	q.save(ctx, job)

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted

	case jobs.IsPermanent(err):
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
		q.logger.Error().Err(err).
			Str("job_id", job.JobID).
			Int("attempt", job.Attempt).
			Msg("Job failed permanently")

	case job.Attempt >= q.cfg.MaxAttempts:
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
		q.logger.Error().Err(err).
			Str("job_id", job.JobID).
			Str("transaction_id", job.TransactionID).
			Int("attempt", job.Attempt).
			Msg("Job failed, retries exhausted")

	default:
		job.Status = jobs.JobStatusRetrying
		job.Error = err.Error()
		backoff := q.backoff(job.Attempt)
		q.logger.Warn().Err(err).
			Str("job_id", job.JobID).
			Int("attempt", job.Attempt).
			Dur("backoff", backoff).
			Msg("Job failed, retrying")
		q.save(ctx, job)
		q.requeueAfter(backoff, job)
		return
	}

	q.save(ctx, job)
}

// backoff returns base * 2^(attempt-1)
func (q *Queue) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return q.cfg.RetryBaseDelay << (attempt - 1)
}

func (q *Queue) requeueAfter(delay time.Duration, job *jobs.RecurringTransactionJob) {
	time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.closed {
			return
		}
		job.Status = jobs.JobStatusPending
		job.CompletedAt = nil
		q.pending = append(q.pending, job)
		q.notify()
	})
}

func (q *Queue) save(ctx context.Context, job *jobs.RecurringTransactionJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.logger.Warn().Err(err).Str("job_id", job.JobID).Msg("Failed to save job state")
	}
}

// Stop stops the queue and waits for in-flight jobs to complete.
// Jobs still pending are dropped.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	dropped := len(q.pending)
	q.pending = nil
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info().Int("dropped_pending", dropped).Msg("Job queue stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue without a deadline.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
