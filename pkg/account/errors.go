package account

import idmerrors "github.com/tendant/simple-account/pkg/errors"

var (
	// ErrAccountNotFound is returned when no account matches a lookup,
	// including token lookups that found no live token.
	ErrAccountNotFound = idmerrors.ErrNotFound

	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = idmerrors.ErrEmailTaken

	// ErrStoreUnavailable wraps driver and transport failures.
	ErrStoreUnavailable = idmerrors.ErrStoreUnavailable
)
