package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-account/pkg/account"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/login"
)

// Profile is the public view of an account.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfileService provides profile-related operations
type ProfileService struct {
	repo   account.Repository
	hasher login.PasswordHasher
	policy login.PasswordPolicy
}

type Option func(*ProfileService)

// WithPasswordPolicy sets the policy UpdatePassword enforces.
func WithPasswordPolicy(p login.PasswordPolicy) Option {
	return func(s *ProfileService) {
		s.policy = p
	}
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo account.Repository, hasher login.PasswordHasher, opts ...Option) *ProfileService {
	s := &ProfileService{
		repo:   repo,
		hasher: hasher,
		policy: login.DefaultPasswordPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMe returns the profile of the given account.
func (s *ProfileService) GetMe(ctx context.Context, accountID uuid.UUID) (Profile, error) {
	acct, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(acct)
}

type UpdateUsernameParams struct {
	AccountID       uuid.UUID
	CurrentPassword string
	NewUsername     string
}

// UpdateUsername changes the username after checking the current password.
func (s *ProfileService) UpdateUsername(ctx context.Context, params UpdateUsernameParams) (Profile, error) {
	if _, err := s.checkPassword(ctx, params.AccountID, params.CurrentPassword); err != nil {
		return Profile{}, err
	}

	username := strings.TrimSpace(params.NewUsername)
	acct, err := s.repo.Update(ctx, params.AccountID, account.AccountUpdate{Username: &username})
	if err != nil {
		slog.Error("Failed to update username", "account_id", params.AccountID, "err", err)
		return Profile{}, err
	}
	return toProfile(acct)
}

type UpdatePasswordParams struct {
	AccountID       uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// UpdatePassword replaces the password after checking the current one.
func (s *ProfileService) UpdatePassword(ctx context.Context, params UpdatePasswordParams) error {
	if _, err := s.checkPassword(ctx, params.AccountID, params.CurrentPassword); err != nil {
		return err
	}
	if err := s.policy.Check(params.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(params.NewPassword)
	if err != nil {
		return idmerrors.InternalWrap(err, "failed to hash password")
	}
	if _, err := s.repo.Update(ctx, params.AccountID, account.AccountUpdate{PasswordHash: &hash}); err != nil {
		return err
	}

	slog.Info("Password changed", "account_id", params.AccountID)
	return nil
}

func (s *ProfileService) checkPassword(ctx context.Context, id uuid.UUID, password string) (account.Account, error) {
	acct, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return account.Account{}, err
	}
	ok, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil || !ok {
		return account.Account{}, idmerrors.ErrInvalidCredentials
	}
	return acct, nil
}

func toProfile(acct account.Account) (Profile, error) {
	var p Profile
	if err := copier.Copy(&p, &acct); err != nil {
		return Profile{}, idmerrors.InternalWrap(err, "failed to map profile")
	}
	return p, nil
}
