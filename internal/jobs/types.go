package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// RecurringTransactionJob asks a worker to materialise one occurrence of a
// recurring transaction. TransactionID and UserID travel as strings so a
// malformed payload can still be received and rejected.
type RecurringTransactionJob struct {
	JobID         string `json:"jobId,omitempty"`
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`

	Status      JobStatus  `json:"status,omitempty"`
	Attempt     int        `json:"attempt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Validate parses both identifiers. Either one missing or malformed is a
// domain.ErrInvalidWorkItem.
func (j *RecurringTransactionJob) Validate() (transactionID, userID uuid.UUID, err error) {
	if j.TransactionID == "" || j.UserID == "" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: transactionId and userId are required", domain.ErrInvalidWorkItem)
	}
	transactionID, err = uuid.Parse(j.TransactionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: transactionId: %v", domain.ErrInvalidWorkItem, err)
	}
	userID, err = uuid.Parse(j.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: userId: %v", domain.ErrInvalidWorkItem, err)
	}
	return transactionID, userID, nil
}

// ThrottleKey groups jobs that share a throughput ceiling
func (j *RecurringTransactionJob) ThrottleKey() string {
	return j.UserID
}

// Publisher enqueues work items for asynchronous processing.
type Publisher interface {
	// PublishRecurring enqueues every job or none of them.
	PublishRecurring(ctx context.Context, jobs []*RecurringTransactionJob) error

	Close() error
}

// Consumer delivers queued jobs to a Handler.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// Handler processes one job. A non-nil error schedules a retry unless it is
// wrapped with Permanent.
type Handler func(ctx context.Context, job *RecurringTransactionJob) error

// JobStore tracks job state for inspection.
type JobStore interface {
	SaveJob(ctx context.Context, job *RecurringTransactionJob) error
	DeleteJob(ctx context.Context, jobID string) error
	GetJob(ctx context.Context, jobID string) (*RecurringTransactionJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*RecurringTransactionJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
}

// ErrJobNotFound is returned by JobStore.GetJob for an unknown id
var ErrJobNotFound = errors.New("job not found")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err (or anything it wraps) was marked Permanent
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
