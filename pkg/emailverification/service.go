package emailverification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/account"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/token"
)

// DefaultTokenExpiry is how long a verification link stays usable.
const DefaultTokenExpiry = time.Hour

// NotificationSender delivers a templated notice.
type NotificationSender interface {
	Send(ctx context.Context, noticeType notification.NoticeType, data notification.NotificationData) error
}

// ResendThrottle limits how often a key may trigger an email.
type ResendThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// IssuedToken is a freshly stored verification token.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// EmailVerificationService handles email verification operations
type EmailVerificationService struct {
	repo        account.Repository
	notifier    NotificationSender
	generator   token.Generator
	throttle    ResendThrottle
	baseURL     string
	tokenExpiry time.Duration
	now         func() time.Time
}

// EmailVerificationServiceOption defines configuration options
type EmailVerificationServiceOption func(*EmailVerificationService)

// WithTokenExpiry sets the token expiration duration
func WithTokenExpiry(expiry time.Duration) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.tokenExpiry = expiry
	}
}

// WithTokenGenerator replaces the crypto/rand token generator
func WithTokenGenerator(g token.Generator) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.generator = g
	}
}

// WithResendThrottle limits verification emails per account
func WithResendThrottle(t ResendThrottle) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.throttle = t
	}
}

// WithClock sets the time source used for expiry and validation
func WithClock(now func() time.Time) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.now = now
	}
}

// NewEmailVerificationService creates a new email verification service
func NewEmailVerificationService(
	repo account.Repository,
	notifier NotificationSender,
	baseURL string,
	opts ...EmailVerificationServiceOption,
) *EmailVerificationService {
	service := &EmailVerificationService{
		repo:        repo,
		notifier:    notifier,
		generator:   token.NewRandomGenerator(),
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenExpiry: DefaultTokenExpiry,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// IssueVerificationToken stores a new verification token for the account,
// replacing any previous one, and emails the link. If the email fails the
// token is kept and ErrNotificationFailed is returned with it.
func (s *EmailVerificationService) IssueVerificationToken(ctx context.Context, accountID uuid.UUID) (IssuedToken, error) {
	acct, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return IssuedToken{}, err
	}

	if acct.IsVerified {
		slog.Info("Email already verified", "account_id", accountID)
		return IssuedToken{}, ErrAlreadyVerified
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, "verify:"+accountID.String())
		if err != nil {
			return IssuedToken{}, idmerrors.StoreUnavailable(err)
		}
		if !allowed {
			slog.Warn("Verification resend limit reached", "account_id", accountID)
			return IssuedToken{}, ErrRateLimitExceeded
		}
	}

	tok, err := s.generator.Generate()
	if err != nil {
		return IssuedToken{}, idmerrors.InternalWrap(err, "failed to generate token")
	}

	expiresAt := s.now().UTC().Add(s.tokenExpiry)
	if _, err := s.repo.Update(ctx, accountID, account.AccountUpdate{
		VerifyToken: &account.TokenUpdate{Token: tok, ExpiresAt: expiresAt},
	}); err != nil {
		return IssuedToken{}, err
	}
	issued := IssuedToken{Token: tok, ExpiresAt: expiresAt}

	err = s.notifier.Send(ctx, notification.EmailVerificationNotice, notification.NotificationData{
		To: acct.Email,
		Data: map[string]string{
			"Username":  acct.Username,
			"Link":      s.VerificationLink(tok),
			"ExpiresIn": notification.FormatExpiry(s.tokenExpiry),
		},
	})
	if err != nil {
		slog.Error("Failed to send verification email", "account_id", accountID, "err", err)
		return issued, idmerrors.NotificationFailed(err)
	}

	slog.Info("Verification token issued", "account_id", accountID, "expires_at", expiresAt)
	return issued, nil
}

// VerificationLink builds the link embedded in the verification email.
func (s *EmailVerificationService) VerificationLink(tok string) string {
	return fmt.Sprintf("%s/verifyemail?token=%s", s.baseURL, tok)
}

// ConsumeVerificationToken marks the owning account verified and clears
// the token. Unknown, expired and used tokens all yield ErrInvalidOrExpired.
func (s *EmailVerificationService) ConsumeVerificationToken(ctx context.Context, tok string) error {
	if tok == "" {
		return ErrInvalidOrExpired
	}

	acct, err := s.repo.ConsumeVerifyToken(ctx, tok, s.now().UTC())
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrInvalidOrExpired
		}
		return err
	}

	slog.Info("Email verified", "account_id", acct.ID)
	return nil
}

// GetVerificationStatus reports whether the account's email is verified.
func (s *EmailVerificationService) GetVerificationStatus(ctx context.Context, accountID uuid.UUID) (bool, error) {
	acct, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acct.IsVerified, nil
}
