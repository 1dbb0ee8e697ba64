package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned by Send when no SMTP server is configured.
var ErrNotConfigured = errors.New("smtp server not configured")

// SMTPProvider delivers mail via SMTP using the go-mail library.
type SMTPProvider struct {
	config SMTPConfig
}

// NewSMTPProvider creates a new SMTPProvider with the given configuration.
func NewSMTPProvider(config SMTPConfig) *SMTPProvider {
	return &SMTPProvider{config: config}
}

// Name returns the provider identifier.
func (p *SMTPProvider) Name() string { return "smtp" }

// Send delivers msg using the configured SMTP server. The authenticated user,
// when set, is used as the envelope sender.
func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if !p.config.Configured() {
		return ErrNotConfigured
	}

	m, err := buildMsg(msg)
	if err != nil {
		return err
	}
	if p.config.Username != "" && strings.Contains(p.config.Username, "@") {
		if err := m.EnvelopeFrom(p.config.Username); err != nil {
			return fmt.Errorf("invalid envelope sender: %w", err)
		}
	}

	opts := []mail.Option{
		mail.WithPort(p.config.Port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(p.config.Encryption)),
	}
	if p.config.Encryption == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}
	if p.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(p.config.Username),
			mail.WithPassword(p.config.Password),
		)
	}

	c, err := mail.NewClient(p.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return c.DialAndSendWithContext(ctx, m)
}

// buildMsg converts a Message into a go-mail message.
func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}

	added := 0
	for _, r := range msg.To {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if err := m.AddTo(r); err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", r, err)
		}
		added++
	}
	if added == 0 {
		return nil, errors.New("no recipients")
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
