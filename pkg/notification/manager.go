package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"sync"
	texttemplate "text/template"
)

// NotificationManager renders registered templates and hands the result to
// the notifier registered for each system.
type NotificationManager struct {
	mu                   sync.RWMutex
	notifiers            map[NotificationSystem]Notifier
	notificationRegistry map[NoticeType]map[NotificationSystem]NoticeTemplate
}

// NewNotificationManager creates a manager and applies opts in order.
func NewNotificationManager(opts ...NotificationManagerOption) (*NotificationManager, error) {
	nm := &NotificationManager{
		notifiers:            make(map[NotificationSystem]Notifier),
		notificationRegistry: make(map[NoticeType]map[NotificationSystem]NoticeTemplate),
	}
	for _, opt := range opts {
		if err := opt(nm); err != nil {
			return nil, err
		}
	}
	return nm, nil
}

// RegisterNotifier registers a notifier for a specific system, replacing any
// previous one.
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.notifiers[system] = notifier
}

// RegisterNotification adds or replaces the template for a notice type on
// a system. The subject and at least one body are required.
func (nm *NotificationManager) RegisterNotification(noticeType NoticeType, system NotificationSystem, tmpl NoticeTemplate) error {
	if noticeType == "" || system == "" {
		return fmt.Errorf("invalid input: notice type and system cannot be empty")
	}
	if tmpl.Subject == "" {
		return fmt.Errorf("invalid template for %s: subject is required", noticeType)
	}
	if tmpl.Html == "" && tmpl.Text == "" {
		return fmt.Errorf("invalid template for %s: html or text body is required", noticeType)
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.notificationRegistry[noticeType]; !exists {
		nm.notificationRegistry[noticeType] = make(map[NotificationSystem]NoticeTemplate)
	}
	nm.notificationRegistry[noticeType][system] = tmpl
	return nil
}

// Send renders noticeType for every system it is registered on and delivers
// it. Errors from all systems are joined.
func (nm *NotificationManager) Send(ctx context.Context, noticeType NoticeType, data NotificationData) error {
	if data.To == "" {
		return fmt.Errorf("notification %s requires a recipient", noticeType)
	}

	nm.mu.RLock()
	systemTemplates, exists := nm.notificationRegistry[noticeType]
	if !exists {
		nm.mu.RUnlock()
		return fmt.Errorf("no templates registered for notice type: %s", noticeType)
	}
	type delivery struct {
		system   NotificationSystem
		notifier Notifier
		tmpl     NoticeTemplate
	}
	deliveries := make([]delivery, 0, len(systemTemplates))
	for system, tmpl := range systemTemplates {
		notifier, ok := nm.notifiers[system]
		if !ok {
			nm.mu.RUnlock()
			return fmt.Errorf("no notifier registered for system: %s", system)
		}
		deliveries = append(deliveries, delivery{system, notifier, tmpl})
	}
	nm.mu.RUnlock()

	var errs []error
	for _, d := range deliveries {
		msg, err := render(noticeType, d.tmpl, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := d.notifier.Send(ctx, msg); err != nil {
			slog.Error("Failed to send notification", "type", noticeType, "system", d.system, "err", err)
			errs = append(errs, fmt.Errorf("send %s via %s: %w", noticeType, d.system, err))
		}
	}
	return errors.Join(errs...)
}

func render(noticeType NoticeType, tmpl NoticeTemplate, data NotificationData) (Message, error) {
	msg := Message{
		NoticeType: noticeType,
		To:         data.To,
		Subject:    tmpl.Subject,
	}
	if data.Subject != "" {
		msg.Subject = data.Subject
	}

	if tmpl.Html != "" {
		t, err := htmltemplate.New(string(noticeType)).Option("missingkey=error").Parse(tmpl.Html)
		if err != nil {
			return Message{}, fmt.Errorf("parse html template %s: %w", noticeType, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data.Data); err != nil {
			return Message{}, fmt.Errorf("render html template %s: %w", noticeType, err)
		}
		msg.Html = buf.String()
	}

	if tmpl.Text != "" {
		t, err := texttemplate.New(string(noticeType)).Option("missingkey=error").Parse(tmpl.Text)
		if err != nil {
			return Message{}, fmt.Errorf("parse text template %s: %w", noticeType, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data.Data); err != nil {
			return Message{}, fmt.Errorf("render text template %s: %w", noticeType, err)
		}
		msg.Text = buf.String()
	}

	return msg, nil
}
