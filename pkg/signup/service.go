package signup

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/emailverification"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/login"
)

var (
	// ErrEmailTaken is returned when another account already uses the email
	ErrEmailTaken = idmerrors.ErrEmailTaken

	// ErrRegistrationDisabled is returned when signups are turned off
	ErrRegistrationDisabled = idmerrors.New(idmerrors.ErrCodeForbidden, "registration is disabled")
)

// VerificationIssuer starts email verification for a new account.
type VerificationIssuer interface {
	IssueVerificationToken(ctx context.Context, accountID uuid.UUID) (emailverification.IssuedToken, error)
}

// SignupService handles user registration business logic
type SignupService struct {
	repo                account.Repository
	hasher              login.PasswordHasher
	verifier            VerificationIssuer
	policy              login.PasswordPolicy
	registrationEnabled bool
}

// SignupServiceOption is a functional option for configuring SignupService
type SignupServiceOption func(*SignupService)

// WithRegistrationEnabled sets whether registration is enabled
func WithRegistrationEnabled(enabled bool) SignupServiceOption {
	return func(s *SignupService) {
		s.registrationEnabled = enabled
	}
}

// WithPasswordPolicy replaces the default minimum-length policy
func WithPasswordPolicy(p login.PasswordPolicy) SignupServiceOption {
	return func(s *SignupService) {
		s.policy = p
	}
}

// NewSignupService creates a new SignupService with the given options
func NewSignupService(repo account.Repository, hasher login.PasswordHasher, verifier VerificationIssuer, opts ...SignupServiceOption) *SignupService {
	s := &SignupService{
		repo:                repo,
		hasher:              hasher,
		verifier:            verifier,
		policy:              login.DefaultPasswordPolicy(),
		registrationEnabled: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RegisterUserRequest represents a user registration request
type RegisterUserRequest struct {
	Username string
	Email    string
	Password string
}

// RegisterUserResult represents the result of user registration
type RegisterUserResult struct {
	Account               account.Account
	VerificationEmailSent bool
}

// IsRegistrationEnabled returns whether registration is enabled
func (s *SignupService) IsRegistrationEnabled() bool {
	return s.registrationEnabled
}

// RegisterUser creates an unverified account and sends the first
// verification email.
func (s *SignupService) RegisterUser(ctx context.Context, req RegisterUserRequest) (RegisterUserResult, error) {
	if !s.registrationEnabled {
		return RegisterUserResult{}, ErrRegistrationDisabled
	}

	if err := s.policy.Check(req.Password); err != nil {
		return RegisterUserResult{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterUserResult{}, idmerrors.InternalWrap(err, "failed to hash password")
	}

	acct, err := s.repo.Create(ctx, account.Account{
		Username:     strings.TrimSpace(req.Username),
		Email:        account.NormalizeEmail(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		return RegisterUserResult{}, err
	}
	slog.Info("Account created", "account_id", acct.ID)

	result := RegisterUserResult{Account: acct}
	if s.verifier == nil {
		return result, nil
	}

	if _, err := s.verifier.IssueVerificationToken(ctx, acct.ID); err != nil {
		// the account stays; a new link can be requested later
		slog.Warn("Verification email not sent after signup", "account_id", acct.ID, "err", err)
		return result, nil
	}
	result.VerificationEmailSent = true
	return result, nil
}
