// Package email delivers transactional email such as budget alerts.
package email

import (
	"context"
	"errors"
)

// ErrNoRecipient is returned when a message has no recipient address
var ErrNoRecipient = errors.New("email recipient is required")

// Message is one outgoing email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Result is the provider's delivery receipt
type Result struct {
	ID string
}

// Sender delivers a rendered message
type Sender interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}
