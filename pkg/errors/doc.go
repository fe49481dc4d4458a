// Package errors provides structured error handling with error codes for simple-account.
//
// Every service returns either one of the package-level sentinels or a
// wrapped *Error carrying the same code, so callers can branch with the
// standard library:
//
//	if errors.Is(err, idmerrors.ErrInvalidOrExpired) {
//		// token absent, mismatched, expired or already used
//	}
//
// HTTP handlers translate an error into a status with
// MapErrorCodeToHTTPStatus(GetCode(err)) and render GetMessage(err), which
// never exposes the wrapped cause.
//
// # Error kinds
//
//   - ErrNotFound           USER_NOT_FOUND            404
//   - ErrAlreadyVerified    EMAIL_ALREADY_VERIFIED    409
//   - ErrInvalidOrExpired   TOKEN_INVALID_OR_EXPIRED  400
//   - ErrNotificationFailed NOTIFICATION_FAILED       502
//   - ErrStoreUnavailable   RESOURCE_UNAVAILABLE      503
//   - ErrEmailTaken         USER_ALREADY_EXISTS       409
//   - ErrInvalidCredentials INVALID_CREDENTIALS       401
//   - ErrRateLimitExceeded  RATE_LIMIT_EXCEEDED       429
//
// VALIDATION_FAILED maps to 400 and FORBIDDEN to 403.
package errors
