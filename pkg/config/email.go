package config

import (
	"time"

	"github.com/tendant/simple-account/pkg/notification"
)

// EmailConfig holds SMTP email configuration
type EmailConfig struct {
	Host     string        `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16        `env:"EMAIL_PORT" env-default:"1025"`
	Username string        `env:"EMAIL_USERNAME"`
	Password string        `env:"EMAIL_PASSWORD"`
	From     string        `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool          `env:"EMAIL_TLS" env-default:"false"`
	Timeout  time.Duration `env:"EMAIL_TIMEOUT" env-default:"15s"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
		Timeout:  e.Timeout,
	}
}
