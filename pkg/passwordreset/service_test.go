package passwordreset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/ratelimit"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	svc    *PasswordResetService
	repo   *account.InMemoryRepository
	mock   *notification.MockNotifier
	hasher login.PasswordHasher
	now    time.Time
	acct   account.Account
}

func setupTestService(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   account.NewInMemoryRepository(),
		mock:   &notification.MockNotifier{},
		hasher: login.NewBcryptHasher(bcrypt.MinCost),
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	nm, err := notification.NewNotificationManager(
		notification.WithNotifier(notification.EmailSystem, env.mock),
		notification.WithDefaultTemplates(),
	)
	require.NoError(t, err)

	opts = append([]Option{WithClock(func() time.Time { return env.now })}, opts...)
	env.svc = NewPasswordResetService(env.repo, nm, env.hasher, "https://app.test", opts...)

	hash, err := env.hasher.Hash("oldpass123")
	require.NoError(t, err)
	env.acct, err = env.repo.Create(context.Background(), account.Account{
		Username:     "ana",
		Email:        "ana@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return env
}

func (env *testEnv) resetToken(t *testing.T) string {
	t.Helper()
	acct, err := env.repo.FindByID(context.Background(), env.acct.ID)
	require.NoError(t, err)
	require.NotNil(t, acct.ResetToken)
	return *acct.ResetToken
}

func TestResetFlow(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t)

	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	tok := env.resetToken(t)
	assert.Len(t, tok, 64)

	msg, ok := env.mock.Last()
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.Text, "https://app.test/reset-password?token="+tok)

	// validating twice leaves the token usable
	require.NoError(t, env.svc.ValidateResetToken(ctx, tok))
	require.NoError(t, env.svc.ValidateResetToken(ctx, tok))

	require.NoError(t, env.svc.ConsumeResetToken(ctx, tok, "newpass123"))

	acct, err := env.repo.FindByID(ctx, env.acct.ID)
	require.NoError(t, err)
	assert.Nil(t, acct.ResetToken)
	assert.Nil(t, acct.ResetTokenExpiry)

	ok, err = env.hasher.Verify("newpass123", acct.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.hasher.Verify("oldpass123", acct.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)

	err = env.svc.ConsumeResetToken(ctx, tok, "another123")
	assert.True(t, errors.Is(err, ErrInvalidOrExpired))
	assert.True(t, errors.Is(env.svc.ValidateResetToken(ctx, tok), ErrInvalidOrExpired))
}

func TestIssueUnknownEmail(t *testing.T) {
	env := setupTestService(t)

	err := env.svc.IssueResetToken(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, env.mock.Messages())
}

func TestIssueNormalizesEmail(t *testing.T) {
	env := setupTestService(t)

	require.NoError(t, env.svc.IssueResetToken(context.Background(), "  Ana@Example.COM "))
	assert.Len(t, env.mock.Messages(), 1)
}

func TestIssueOverwritesPreviousToken(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t)

	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	first := env.resetToken(t)
	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	second := env.resetToken(t)
	assert.NotEqual(t, first, second)

	assert.True(t, errors.Is(env.svc.ValidateResetToken(ctx, first), ErrInvalidOrExpired))
	assert.NoError(t, env.svc.ValidateResetToken(ctx, second))
}

func TestResetTokenExpiry(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t)

	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	tok := env.resetToken(t)

	env.now = env.now.Add(59 * time.Minute)
	assert.NoError(t, env.svc.ValidateResetToken(ctx, tok))

	env.now = env.now.Add(time.Minute)
	assert.True(t, errors.Is(env.svc.ValidateResetToken(ctx, tok), ErrInvalidOrExpired))

	err := env.svc.ConsumeResetToken(ctx, tok, "newpass123")
	assert.True(t, errors.Is(err, ErrInvalidOrExpired))

	// the password is untouched
	acct, err := env.repo.FindByID(ctx, env.acct.ID)
	require.NoError(t, err)
	ok, err := env.hasher.Verify("oldpass123", acct.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.hasher.Verify("newpass123", acct.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeRejectsWeakPassword(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t)

	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	tok := env.resetToken(t)

	err := env.svc.ConsumeResetToken(ctx, tok, "short")
	assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodePasswordComplexity))

	// the token survives a rejected password
	assert.NoError(t, env.svc.ValidateResetToken(ctx, tok))
}

func TestIssueNotificationFailure(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t)
	env.mock.SetErr(errors.New("smtp: connection refused"))

	err := env.svc.IssueResetToken(ctx, "ana@example.com")
	assert.True(t, errors.Is(err, ErrNotificationFailed))

	assert.NoError(t, env.svc.ValidateResetToken(ctx, env.resetToken(t)))
}

func TestIssueThrottled(t *testing.T) {
	ctx := context.Background()
	throttle := ratelimit.NewThrottle(ratelimit.NewInMemoryCounter(), 1, time.Hour)
	env := setupTestService(t, WithResendThrottle(throttle))

	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	require.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	assert.Len(t, env.mock.Messages(), 1)
}

type brokenThrottle struct{}

func (brokenThrottle) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestIssueThrottleUnavailable(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, WithResendThrottle(brokenThrottle{}))

	assert.NoError(t, env.svc.IssueResetToken(ctx, "ana@example.com"))
	assert.NoError(t, env.svc.IssueResetToken(ctx, "nobody@example.com"))
	assert.Len(t, env.mock.Messages(), 1)
}

func TestIssueThrottleCountsUnknownEmails(t *testing.T) {
	ctx := context.Background()
	counter := ratelimit.NewInMemoryCounter()
	env := setupTestService(t, WithResendThrottle(ratelimit.NewThrottle(counter, 5, time.Hour)))

	require.NoError(t, env.svc.IssueResetToken(ctx, "nobody@example.com"))
	n, err := counter.Incr(ctx, "reset:nobody@example.com", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// gatedSender holds every send until release is closed.
type gatedSender struct {
	release chan struct{}
	sent    chan string
}

func (g *gatedSender) Send(ctx context.Context, _ notification.NoticeType, data notification.NotificationData) error {
	<-g.release
	g.sent <- data.To
	return ctx.Err()
}

func TestRequestResetReturnsBeforeDelivery(t *testing.T) {
	env := setupTestService(t)
	gate := &gatedSender{release: make(chan struct{}), sent: make(chan string, 1)}
	svc := NewPasswordResetService(env.repo, gate, env.hasher, "https://app.test")

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		svc.RequestReset(ctx, "ana@example.com")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("RequestReset waited for delivery")
	}

	// the request finishing does not abort delivery
	cancel()
	close(gate.release)
	svc.Wait()

	assert.Equal(t, "ana@example.com", <-gate.sent)
	assert.Len(t, env.resetToken(t), 64)
}

func TestRequestResetUnknownEmail(t *testing.T) {
	env := setupTestService(t)

	env.svc.RequestReset(context.Background(), "nobody@example.com")
	env.svc.Wait()
	assert.Empty(t, env.mock.Messages())
}
