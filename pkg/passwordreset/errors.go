package passwordreset

import idmerrors "github.com/tendant/simple-account/pkg/errors"

var (
	// ErrInvalidOrExpired covers empty, unknown, expired and used tokens alike.
	ErrInvalidOrExpired = idmerrors.ErrInvalidOrExpired

	// ErrNotificationFailed means the token was stored but the email was not sent.
	ErrNotificationFailed = idmerrors.ErrNotificationFailed
)
