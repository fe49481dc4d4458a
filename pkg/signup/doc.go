// Package signup provides user registration for simple-account.
//
// A successful registration creates an unverified account with a hashed
// password and immediately issues an email verification token. If the
// verification email cannot be sent the account is kept and the result
// reports VerificationEmailSent=false; the user can ask for a new link
// later through the email verification endpoints.
//
// # Basic Usage
//
//	service := signup.NewSignupService(repo, hasher, verifier,
//		signup.WithRegistrationEnabled(true),
//	)
//
//	result, err := service.RegisterUser(ctx, signup.RegisterUserRequest{
//		Username: "johndoe",
//		Email:    "john@example.com",
//		Password: "SecurePass123",
//	})
//	if errors.Is(err, signup.ErrEmailTaken) {
//		// an account already uses this address
//	}
//
// # HTTP Handler Integration
//
//	handle := signup.NewHandle(service)
//	r.Post("/api/users/signup", handle.RegisterUser)
package signup
