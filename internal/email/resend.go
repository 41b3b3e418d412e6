package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender implements Sender using the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender authenticated with apiKey
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send posts the message to Resend and returns its message id
func (s *ResendSender) Send(ctx context.Context, msg Message) (*Result, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("resend: %w", err)
	}
	return &Result{ID: sent.Id}, nil
}
