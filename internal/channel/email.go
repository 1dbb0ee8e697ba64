package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

// emailFields are the payload keys an email notification requires, in the
// order they are checked.
var emailFields = []string{"from", "to", "subject", "body"}

// EmailAdapter sends the payload as a plain-text email.
type EmailAdapter struct {
	def    *trigger.Definition
	mailer notification.Provider
	logger *slog.Logger
}

// NewEmailAdapter returns the email adapter for def.
func NewEmailAdapter(def *trigger.Definition, deps Deps) Adapter {
	return &EmailAdapter{def: def, mailer: deps.Mailer, logger: deps.Logger}
}

// Trigger implements Adapter.
func (a *EmailAdapter) Trigger(ctx context.Context, payload Payload) (string, error) {
	values := make(map[string]string, len(emailFields))
	for _, f := range emailFields {
		v, ok := payload.String(f)
		if !ok {
			return "", &trigger.PayloadError{Message: fmt.Sprintf("Missing data for %s", f)}
		}
		values[f] = v
	}

	if a.mailer == nil {
		return "", emailTransportError(notification.ErrNotConfigured)
	}

	msg := notification.Message{
		From:    values["from"],
		To:      strings.Split(values["to"], ","),
		Subject: values["subject"],
		Body:    values["body"],
	}
	if err := a.mailer.Send(ctx, msg); err != nil {
		a.logger.Warn("email delivery failed",
			"trigger", a.def.Name,
			"provider", a.mailer.Name(),
			"error", err,
		)
		return "", emailTransportError(err)
	}
	return "Email channel triggered successfully", nil
}

func emailTransportError(err error) error {
	return &trigger.TransportError{
		Message: "Server error. Unable to connect to email server",
		Err:     err,
	}
}
