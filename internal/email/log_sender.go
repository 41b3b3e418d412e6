package email

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogSender logs messages instead of delivering them. Used in development
// when no provider key is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "email").Logger()}
}

// Send logs the message and returns a generated id
func (s *LogSender) Send(ctx context.Context, msg Message) (*Result, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}
	id := uuid.New().String()
	s.logger.Info().
		Str("message_id", id).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("Email not sent (no provider configured)")
	return &Result{ID: id}, nil
}
