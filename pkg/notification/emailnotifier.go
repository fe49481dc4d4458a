package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
	Timeout  time.Duration

	// InsecureSkipVerify disables certificate checks. Local relays only.
	InsecureSkipVerify bool
}

// EmailNotifier delivers messages over SMTP.
type EmailNotifier struct {
	config SMTPConfig
	client *mail.Client
	mu     sync.Mutex
}

func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultSMTPTimeout
	}

	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(config.Timeout),
	}

	// Only add authentication if username and password are provided
	if config.Username != "" && config.Password != "" {
		slog.Info("Adding authentication", "user", config.Username)
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.InsecureSkipVerify {
		opts = append(opts, mail.WithTLSConfig(&tls.Config{
			ServerName:         config.Host,
			InsecureSkipVerify: true,
		}))
	}
	if config.TLS {
		slog.Info("Using TLS Mandatory policy")
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		slog.Info("Using NoTLS policy")
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	slog.Info("Creating mail client", "host", config.Host, "port", config.Port, "timeout", config.Timeout)
	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &EmailNotifier{config: config, client: client}, nil
}

func (e *EmailNotifier) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return fmt.Errorf("email notification requires 'To' address")
	}

	msg := mail.NewMsg()
	if err := msg.From(e.config.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(m.Subject)

	switch {
	case m.Text != "" && m.Html != "":
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, m.Html)
	case m.Html != "":
		msg.SetBodyString(mail.TypeTextHTML, m.Html)
	default:
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	// mail.Client holds a single connection
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	slog.Info("Email sent", "type", m.NoticeType, "host", e.config.Host, "port", e.config.Port)
	return nil
}
