// Package notification provides the mail transport used by the email
// channel: a Provider abstraction and an SMTP implementation.
package notification

import "context"

// Message is the content to be delivered by a Provider.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Provider is the interface for mail delivery backends.
type Provider interface {
	// Name returns the provider identifier (e.g. "smtp").
	Name() string
	// Send delivers the message using the provider's transport.
	Send(ctx context.Context, msg Message) error
}
