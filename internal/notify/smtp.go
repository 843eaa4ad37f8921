package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig configures SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

// SMTPNotifier sends notifications through an SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier validates cfg and returns a notifier. No connection is made here.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("notify: smtp host is required")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("notify: from and to addresses are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

var _ Notifier = (*SMTPNotifier)(nil)

// Notify composes the message and delivers it in a single dial.
func (s *SMTPNotifier) Notify(ctx context.Context, n Notification) error {
	msg, err := s.compose(n)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}

func (s *SMTPNotifier) compose(n Notification) (*mail.Msg, error) {
	body, err := RenderHTML(n)
	if err != nil {
		return nil, err
	}
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(s.cfg.To); err != nil {
		return nil, fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, body)
	msg.AddAlternativeString(mail.TypeTextPlain, RenderText(n))
	return msg, nil
}
