package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/tendant/simple-account/pkg/client"
	emailverificationapi "github.com/tendant/simple-account/pkg/emailverification/api"
	loginapi "github.com/tendant/simple-account/pkg/login/api"
	passwordresetapi "github.com/tendant/simple-account/pkg/passwordreset/api"
	profileapi "github.com/tendant/simple-account/pkg/profile/api"
	"github.com/tendant/simple-account/pkg/signup"
)

// DefaultPrefix is where the account API is mounted.
const DefaultPrefix = "/api/users"

// Config holds all the dependencies and handlers needed to setup routes
type Config struct {
	// Prefix for all account routes, DefaultPrefix when empty
	Prefix string

	LoginHandle             *loginapi.Handle
	SignupHandle            *signup.Handle
	EmailVerificationHandle *emailverificationapi.Handler
	PasswordResetHandle     *passwordresetapi.Handler
	ProfileHandle           *profileapi.Handle

	// JWTAuth verifies session tokens on authenticated routes
	JWTAuth *jwtauth.JWTAuth
	// JWTIssuer, when set, must match the iss claim of session tokens
	JWTIssuer string

	// RateLimit guards signup, login, forgot-password and
	// send-verification. Optional.
	RateLimit func(http.Handler) http.Handler
}

// SetupRoutes mounts the account API on the provided router
func SetupRoutes(router chi.Router, cfg Config) {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	limit := cfg.RateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	router.Route(prefix, func(r chi.Router) {
		// Public routes
		r.With(limit).Post("/signup", cfg.SignupHandle.RegisterUser)
		r.With(limit).Post("/login", cfg.LoginHandle.Login)
		r.With(limit).Post("/forgot-password", cfg.PasswordResetHandle.ForgotPassword)
		r.Get("/logout", cfg.LoginHandle.Logout)
		r.Post("/logout", cfg.LoginHandle.Logout)
		r.Post("/verify-reset-token", cfg.PasswordResetHandle.VerifyResetToken)
		r.Post("/reset-password", cfg.PasswordResetHandle.ResetPassword)
		cfg.EmailVerificationHandle.RoutesPublic(r)

		// Session routes
		r.Group(func(r chi.Router) {
			r.Use(client.Verifier(cfg.JWTAuth))
			r.Use(client.RequireAuthUser(cfg.JWTIssuer))

			r.With(limit).Post("/send-verification", cfg.EmailVerificationHandle.SendVerification)
			r.Get("/verification-status", cfg.EmailVerificationHandle.GetVerificationStatus)
			cfg.ProfileHandle.Routes(r)
		})
	})
}
