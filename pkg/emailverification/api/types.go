package api

// VerifyEmailRequest represents the request to verify an email
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// VerificationStatusResponse represents the verification status
type VerificationStatusResponse struct {
	EmailVerified bool `json:"email_verified"`
}
