// Package notification renders templated notices and delivers them through
// pluggable notifiers.
//
// A NotificationManager keeps a registry of NoticeTemplate per notice type
// and system. Send renders the template with NotificationData.Data and hands
// the resulting Message to the Notifier registered for that system:
//
//	nm, err := notification.NewNotificationManager(
//	    notification.WithSMTP(smtpConfig),
//	    notification.WithDefaultTemplates(),
//	)
//	err = nm.Send(ctx, notification.PasswordResetNotice, notification.NotificationData{
//	    To:   "user@example.com",
//	    Data: map[string]string{"Username": "ana", "Link": link, "ExpiresIn": "1 hour"},
//	})
//
// EmailNotifier sends over SMTP with go-mail. MockNotifier records messages
// for tests.
package notification
