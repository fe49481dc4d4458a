package notification

import (
	"context"
	"strconv"
	"time"
)

// NotificationSystem represents a delivery channel.
type NotificationSystem string

// NoticeType identifies which template a notification is rendered from.
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	EmailVerificationNotice NoticeType = "email_verification"
	PasswordResetNotice     NoticeType = "password_reset"
)

// NoticeTemplate holds the unrendered subject and bodies for one notice
// type. Html is rendered with html/template, Text with text/template.
type NoticeTemplate struct {
	Subject string
	Html    string
	Text    string
}

// NotificationData is what a caller supplies for a single send.
type NotificationData struct {
	To      string            // Recipient address
	Subject string            // Optional override of the template subject
	Data    map[string]string // Template variables, e.g. "Link", "Username"
}

// Message is a fully rendered notification handed to a Notifier.
type Message struct {
	NoticeType NoticeType
	To         string
	Subject    string
	Html       string
	Text       string
}

// Notifier delivers rendered messages over one channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// FormatExpiry renders a link lifetime for email copy, e.g. "1 hour".
func FormatExpiry(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
