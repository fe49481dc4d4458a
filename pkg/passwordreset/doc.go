// Package passwordreset implements the forgot-password flow: issuing a
// single-use reset token by email, checking it, and replacing the password
// once with a valid token.
//
// IssueResetToken never reveals whether an email belongs to an account.
// HTTP handlers call RequestReset, which runs it in the background so the
// response time does not depend on the mail server either.
// ValidateResetToken is read-only; only ConsumeResetToken uses up a token.
package passwordreset
