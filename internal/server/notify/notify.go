// Package notify delivers the e-mail sent by the server, either over SMTP or,
// when no mail host is configured, to the log.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends HTML mail through an SMTP relay.
type SMTPNotifier struct {
	from   string
	client *mail.Client
	send   func(ctx context.Context, c *mail.Client, m *mail.Msg) error
}

// NewSMTPNotifier builds a notifier for cfg. Authentication is enabled when a
// username is set.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("notify: smtp host is required")
	}

	opts := []mail.Option{mail.WithTLSPortPolicy(mail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}

	return &SMTPNotifier{from: cfg.From, client: c, send: dialAndSend}, nil
}

func dialAndSend(ctx context.Context, c *mail.Client, m *mail.Msg) error {
	return c.DialAndSendWithContext(ctx, m)
}

// SendMail delivers one message to a single recipient.
func (n *SMTPNotifier) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	m, err := buildMessage(n.from, to, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := n.send(ctx, n.client, m); err != nil {
		return fmt.Errorf("notify: send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("notify: from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("notify: to address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)
	return m, nil
}

// LogNotifier writes a line per message instead of sending it. The body is
// not logged since it may carry a reset token.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	n.logger.Info(ctx, "mail not sent, no smtp host configured", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
