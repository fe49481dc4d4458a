// Package emailverification issues and consumes email verification tokens.
//
// A token is 32 random bytes, hex encoded, stored on the account with an
// expiry (one hour by default). Issuing overwrites any earlier token, so
// only the latest link works. Consuming a token marks the account verified
// and clears the token in one store operation, so a link works once.
//
//	svc := emailverification.NewEmailVerificationService(repo, notifications, "https://app.example.com",
//		emailverification.WithResendThrottle(throttle),
//	)
//	issued, err := svc.IssueVerificationToken(ctx, accountID)
//	err = svc.ConsumeVerificationToken(ctx, tokenFromLink)
//
// The HTTP handlers live in the api subpackage.
package emailverification
