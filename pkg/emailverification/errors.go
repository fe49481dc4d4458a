package emailverification

import idmerrors "github.com/tendant/simple-account/pkg/errors"

var (
	// ErrAccountNotFound is returned when the account does not exist
	ErrAccountNotFound = idmerrors.ErrNotFound

	// ErrAlreadyVerified is returned when trying to verify an already verified email
	ErrAlreadyVerified = idmerrors.ErrAlreadyVerified

	// ErrInvalidOrExpired is returned for a token that is empty, unknown,
	// expired or already used. The cases are deliberately not distinguished.
	ErrInvalidOrExpired = idmerrors.ErrInvalidOrExpired

	// ErrNotificationFailed is returned when the token was stored but the
	// email could not be sent
	ErrNotificationFailed = idmerrors.ErrNotificationFailed

	// ErrRateLimitExceeded is returned when the resend limit for an account is reached
	ErrRateLimitExceeded = idmerrors.ErrRateLimitExceeded
)
