package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-account/pkg/account"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/token"
)

// DefaultTokenExpiry is how long a reset link stays usable.
const DefaultTokenExpiry = time.Hour

// DefaultDeliveryTimeout bounds a background reset started by RequestReset.
const DefaultDeliveryTimeout = 30 * time.Second

// NotificationSender delivers a templated notice.
type NotificationSender interface {
	Send(ctx context.Context, noticeType notification.NoticeType, data notification.NotificationData) error
}

// ResendThrottle limits how often a key may trigger an email.
type ResendThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// PasswordResetService handles the reset token lifecycle.
type PasswordResetService struct {
	repo        account.Repository
	notifier    NotificationSender
	hasher      login.PasswordHasher
	generator   token.Generator
	throttle    ResendThrottle
	policy      login.PasswordPolicy
	baseURL     string
	tokenExpiry time.Duration
	now         func() time.Time

	deliveryTimeout time.Duration
	pending         sync.WaitGroup
}

type Option func(*PasswordResetService)

func WithTokenExpiry(expiry time.Duration) Option {
	return func(s *PasswordResetService) {
		s.tokenExpiry = expiry
	}
}

func WithTokenGenerator(g token.Generator) Option {
	return func(s *PasswordResetService) {
		s.generator = g
	}
}

// WithResendThrottle caps reset emails per address. Requests over the cap
// are dropped without telling the caller.
func WithResendThrottle(t ResendThrottle) Option {
	return func(s *PasswordResetService) {
		s.throttle = t
	}
}

func WithPasswordPolicy(p login.PasswordPolicy) Option {
	return func(s *PasswordResetService) {
		s.policy = p
	}
}

func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *PasswordResetService) {
		s.deliveryTimeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *PasswordResetService) {
		s.now = now
	}
}

// NewPasswordResetService creates a reset service. baseURL is the public
// origin the reset link points at.
func NewPasswordResetService(
	repo account.Repository,
	notifier NotificationSender,
	hasher login.PasswordHasher,
	baseURL string,
	opts ...Option,
) *PasswordResetService {
	s := &PasswordResetService{
		repo:        repo,
		notifier:    notifier,
		hasher:      hasher,
		generator:   token.NewRandomGenerator(),
		policy:      login.DefaultPasswordPolicy(),
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenExpiry: DefaultTokenExpiry,
		now:         time.Now,

		deliveryTimeout: DefaultDeliveryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestReset runs IssueResetToken in the background and returns at once,
// so a caller sees the same result and latency for any email. Failures are
// logged. Wait blocks until started requests finish.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.IssueResetToken(ctx, email); err != nil {
			slog.Error("Password reset request failed", "err", err)
		}
	}()
}

// Wait blocks until every reset started by RequestReset has finished.
func (s *PasswordResetService) Wait() {
	s.pending.Wait()
}

// IssueResetToken stores a fresh reset token for the account owning email
// and mails the link. An unknown email returns nil with nothing sent.
func (s *PasswordResetService) IssueResetToken(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)

	// counted per address whether or not it is registered
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, "reset:"+email)
		if err != nil {
			slog.Warn("Reset throttle unavailable, allowing request", "err", err)
		} else if !allowed {
			slog.Warn("Password reset limit reached")
			return nil
		}
	}

	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			_, _ = s.generator.Generate()
			slog.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	tok, err := s.generator.Generate()
	if err != nil {
		return idmerrors.InternalWrap(err, "failed to generate token")
	}

	expiresAt := s.now().UTC().Add(s.tokenExpiry)
	if _, err := s.repo.Update(ctx, acct.ID, account.AccountUpdate{
		ResetToken: &account.TokenUpdate{Token: tok, ExpiresAt: expiresAt},
	}); err != nil {
		return err
	}

	err = s.notifier.Send(ctx, notification.PasswordResetNotice, notification.NotificationData{
		To: acct.Email,
		Data: map[string]string{
			"Username":  acct.Username,
			"Link":      s.ResetLink(tok),
			"ExpiresIn": notification.FormatExpiry(s.tokenExpiry),
		},
	})
	if err != nil {
		slog.Error("Failed to send password reset email", "account_id", acct.ID, "err", err)
		return idmerrors.NotificationFailed(err)
	}

	slog.Info("Password reset token issued", "account_id", acct.ID, "expires_at", expiresAt)
	return nil
}

// ResetLink builds the link embedded in the reset email.
func (s *PasswordResetService) ResetLink(tok string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, tok)
}

// ValidateResetToken reports whether tok is a live reset token. It does
// not consume it.
func (s *PasswordResetService) ValidateResetToken(ctx context.Context, tok string) error {
	if tok == "" {
		return ErrInvalidOrExpired
	}
	if _, err := s.repo.FindByResetToken(ctx, tok, s.now().UTC()); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrInvalidOrExpired
		}
		return err
	}
	return nil
}

// ConsumeResetToken sets a new password for the account owning tok and
// clears the token in one store operation.
func (s *PasswordResetService) ConsumeResetToken(ctx context.Context, tok, newPassword string) error {
	if err := s.policy.Check(newPassword); err != nil {
		return err
	}
	if tok == "" {
		return ErrInvalidOrExpired
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return idmerrors.InternalWrap(err, "failed to hash password")
	}

	acct, err := s.repo.ConsumeResetToken(ctx, tok, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrInvalidOrExpired
		}
		return err
	}

	slog.Info("Password reset", "account_id", acct.ID)
	return nil
}
