package api

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetTokenRequest struct {
	Token string `json:"token"`
}

type VerifyResetTokenResponse struct {
	Valid bool `json:"valid"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password" validate:"required"`
}
