// Command emailtest sends one of the account notification emails through
// the configured SMTP relay, to check EMAIL_* settings and templates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/notification"
)

func main() {
	to := flag.String("to", "", "Recipient email address")
	notice := flag.String("notice", string(notification.EmailVerificationNotice), "Notice type: email_verification or password_reset")
	insecure := flag.Bool("insecure", false, "Skip TLS certificate verification")
	flag.Parse()

	if *to == "" {
		fmt.Fprintln(os.Stderr, "Error: -to is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed loading config", "err", err)
		os.Exit(1)
	}

	smtp := cfg.Email.ToSMTPConfig()
	smtp.InsecureSkipVerify = *insecure

	nm, err := notification.NewNotificationManager(
		notification.WithSMTP(smtp),
		notification.WithDefaultTemplates(),
	)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	path := "/verifyemail"
	if notification.NoticeType(*notice) == notification.PasswordResetNotice {
		path = "/reset-password"
	}

	err = nm.Send(ctx, notification.NoticeType(*notice), notification.NotificationData{
		To: *to,
		Data: map[string]string{
			"Username":  "test user",
			"Link":      cfg.BaseURL + path + "?token=test-token",
			"ExpiresIn": notification.FormatExpiry(time.Hour),
		},
	})
	if err != nil {
		slog.Error("Failed sending email", "host", smtp.Host, "port", smtp.Port, "err", err)
		os.Exit(1)
	}

	fmt.Println("Email sent successfully!")
}
