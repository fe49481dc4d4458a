package login

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/simple-account/pkg/account"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = idmerrors.ErrInvalidCredentials

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	GenerateToken(s tokengenerator.SessionSubject) (string, time.Time, error)
}

// Result is a successful login.
type Result struct {
	Account   account.Account
	Token     string
	ExpiresAt time.Time
}

// LoginService checks credentials and issues session tokens.
type LoginService struct {
	repo   account.Repository
	hasher PasswordHasher
	issuer SessionIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewLoginService creates a new login service
func NewLoginService(repo account.Repository, hasher PasswordHasher, issuer SessionIssuer) *LoginService {
	return &LoginService{repo: repo, hasher: hasher, issuer: issuer}
}

// Login verifies email and password and returns a signed session token.
func (s *LoginService) Login(ctx context.Context, email, password string) (Result, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			s.burnHash(password)
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, err
	}

	ok, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			slog.Warn("Password verification error", "account_id", acct.ID, "err", err)
		}
		return Result{}, ErrInvalidCredentials
	}

	tok, expiresAt, err := s.issuer.GenerateToken(tokengenerator.SessionSubject{
		AccountID:     acct.ID,
		Username:      acct.Username,
		Email:         acct.Email,
		EmailVerified: acct.IsVerified,
	})
	if err != nil {
		return Result{}, idmerrors.InternalWrap(err, "failed to issue session")
	}

	slog.Info("Login succeeded", "account_id", acct.ID)
	return Result{Account: acct, Token: tok, ExpiresAt: expiresAt}, nil
}

// burnHash spends the same work as a real verification so unknown emails
// are not faster than wrong passwords.
func (s *LoginService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" && password != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
