package router

import (
	"errors"
	"time"

	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/client"
	"github.com/tendant/simple-account/pkg/emailverification"
	emailverificationapi "github.com/tendant/simple-account/pkg/emailverification/api"
	"github.com/tendant/simple-account/pkg/login"
	loginapi "github.com/tendant/simple-account/pkg/login/api"
	"github.com/tendant/simple-account/pkg/passwordreset"
	passwordresetapi "github.com/tendant/simple-account/pkg/passwordreset/api"
	"github.com/tendant/simple-account/pkg/profile"
	profileapi "github.com/tendant/simple-account/pkg/profile/api"
	"github.com/tendant/simple-account/pkg/ratelimit"
	"github.com/tendant/simple-account/pkg/signup"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

// Options contains what is needed to build every account service
type Options struct {
	// Required
	Repository account.Repository
	Notifier   emailverification.NotificationSender
	JWTSecret  string
	BaseURL    string // origin used in emailed links

	// Optional - defaults will be used if not provided
	Prefix              string
	JWTIssuer           string
	SessionExpiry       time.Duration          // default tokengenerator.DefaultSessionExpiry
	CookieSecure        bool                   // set the Secure flag on the session cookie
	PasswordHasher      login.PasswordHasher   // default bcrypt
	PasswordPolicy      *login.PasswordPolicy  // default login.DefaultPasswordPolicy
	RegistrationEnabled *bool                  // default true
	ResendCounter       ratelimit.Counter      // default in-memory
	ResendLimit         int                    // default 3 emails per window
	ResendWindow        time.Duration          // default 1h
	RateLimit           *ratelimit.Config      // per-IP HTTP limit, disabled when nil
}

// Services are the account services behind the routes
type Services struct {
	Login             *login.LoginService
	Signup            *signup.SignupService
	EmailVerification *emailverification.EmailVerificationService
	PasswordReset     *passwordreset.PasswordResetService
	Profile           *profile.ProfileService
	Sessions          *tokengenerator.JwtTokenGenerator
}

// NewConfig wires services and handlers from opts
func NewConfig(opts Options) (Config, *Services, error) {
	if opts.Repository == nil {
		return Config{}, nil, errors.New("repository is required")
	}
	if opts.Notifier == nil {
		return Config{}, nil, errors.New("notifier is required")
	}
	if opts.JWTSecret == "" {
		return Config{}, nil, errors.New("JWT secret is required")
	}

	hasher := opts.PasswordHasher
	if hasher == nil {
		var err error
		if hasher, err = login.NewPasswordHasher(login.AlgorithmBcrypt); err != nil {
			return Config{}, nil, err
		}
	}
	policy := login.DefaultPasswordPolicy()
	if opts.PasswordPolicy != nil {
		policy = *opts.PasswordPolicy
	}
	counter := opts.ResendCounter
	if counter == nil {
		counter = ratelimit.NewInMemoryCounter()
	}
	resendLimit := opts.ResendLimit
	if resendLimit <= 0 {
		resendLimit = 3
	}
	resendWindow := opts.ResendWindow
	if resendWindow <= 0 {
		resendWindow = time.Hour
	}
	registrationEnabled := true
	if opts.RegistrationEnabled != nil {
		registrationEnabled = *opts.RegistrationEnabled
	}

	throttle := ratelimit.NewThrottle(counter, resendLimit, resendWindow)
	sessions := tokengenerator.NewJwtTokenGenerator(opts.JWTSecret, opts.JWTIssuer, opts.SessionExpiry)

	svc := &Services{Sessions: sessions}
	svc.Login = login.NewLoginService(opts.Repository, hasher, sessions)
	svc.EmailVerification = emailverification.NewEmailVerificationService(
		opts.Repository, opts.Notifier, opts.BaseURL,
		emailverification.WithResendThrottle(throttle),
	)
	svc.PasswordReset = passwordreset.NewPasswordResetService(
		opts.Repository, opts.Notifier, hasher, opts.BaseURL,
		passwordreset.WithResendThrottle(throttle),
		passwordreset.WithPasswordPolicy(policy),
	)
	svc.Signup = signup.NewSignupService(opts.Repository, hasher, svc.EmailVerification,
		signup.WithRegistrationEnabled(registrationEnabled),
		signup.WithPasswordPolicy(policy),
	)
	svc.Profile = profile.NewProfileService(opts.Repository, hasher,
		profile.WithPasswordPolicy(policy),
	)

	cfg := Config{
		Prefix:                  opts.Prefix,
		LoginHandle:             loginapi.NewHandle(svc.Login, tokengenerator.NewCookieSetter(opts.CookieSecure)),
		SignupHandle:            signup.NewHandle(svc.Signup),
		EmailVerificationHandle: emailverificationapi.NewHandler(svc.EmailVerification),
		PasswordResetHandle:     passwordresetapi.NewHandler(svc.PasswordReset),
		ProfileHandle:           profileapi.NewHandle(svc.Profile),
		JWTAuth:                 client.NewJWTAuth(opts.JWTSecret),
		JWTIssuer:               opts.JWTIssuer,
	}
	if opts.RateLimit != nil {
		cfg.RateLimit = ratelimit.NewMiddleware(*opts.RateLimit)
	}
	return cfg, svc, nil
}
