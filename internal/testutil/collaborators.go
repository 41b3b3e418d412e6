package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/email"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/google/uuid"
)

// FixedClock returns a now func that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// RecordingSender is an email.Sender that keeps every message it accepts.
// Err fails every send; FailFor fails sends to one address only.
type RecordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	attempts int

	Err     error
	FailFor map[string]error
}

// Send records msg unless a failure is configured for it
func (r *RecordingSender) Send(ctx context.Context, msg email.Message) (*email.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.Err != nil {
		return nil, r.Err
	}
	if err, ok := r.FailFor[msg.To]; ok {
		return nil, err
	}
	r.messages = append(r.messages, msg)
	return &email.Result{ID: fmt.Sprintf("msg-%d", len(r.messages))}, nil
}

// Messages returns the delivered messages
func (r *RecordingSender) Messages() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.Message(nil), r.messages...)
}

// Attempts counts every Send call, failed or not
func (r *RecordingSender) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

var _ email.Sender = (*RecordingSender)(nil)

// RecordingJobPublisher is a jobs.Publisher that keeps published batches
type RecordingJobPublisher struct {
	mu      sync.Mutex
	batches [][]*jobs.RecurringTransactionJob

	Err error
}

// PublishRecurring records the batch, or fails it whole when Err is set
func (r *RecordingJobPublisher) PublishRecurring(ctx context.Context, batch []*jobs.RecurringTransactionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.batches = append(r.batches, append([]*jobs.RecurringTransactionJob(nil), batch...))
	return nil
}

// Close does nothing
func (r *RecordingJobPublisher) Close() error { return nil }

// Batches returns every published batch
func (r *RecordingJobPublisher) Batches() [][]*jobs.RecurringTransactionJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]*jobs.RecurringTransactionJob(nil), r.batches...)
}

// Jobs flattens every published batch
func (r *RecordingJobPublisher) Jobs() []*jobs.RecurringTransactionJob {
	var out []*jobs.RecurringTransactionJob
	for _, b := range r.Batches() {
		out = append(out, b...)
	}
	return out
}

var _ jobs.Publisher = (*RecordingJobPublisher)(nil)

// PublishedEvent is one event captured by RecordingPublisher
type PublishedEvent struct {
	UserID uuid.UUID
	Event  websocket.Event
}

// RecordingPublisher is a websocket.EventPublisher that keeps every event in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// Publish records the event
func (r *RecordingPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, PublishedEvent{UserID: userID, Event: event})
}

// Events returns a copy of what has been published so far
func (r *RecordingPublisher) Events() []PublishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PublishedEvent(nil), r.events...)
}

// EventsOfType returns the published events whose combined type matches
func (r *RecordingPublisher) EventsOfType(eventType string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range r.Events() {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

var _ websocket.EventPublisher = (*RecordingPublisher)(nil)
