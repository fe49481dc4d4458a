package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/passwordreset"
	"github.com/tendant/simple-account/pkg/ratelimit"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	router http.Handler
	svc    *passwordreset.PasswordResetService
	repo   *account.InMemoryRepository
	mock   *notification.MockNotifier
	acct   account.Account
}

func setupTestHandler(t *testing.T, opts ...passwordreset.Option) *testEnv {
	t.Helper()
	env := &testEnv{
		repo: account.NewInMemoryRepository(),
		mock: &notification.MockNotifier{},
	}

	nm, err := notification.NewNotificationManager(
		notification.WithNotifier(notification.EmailSystem, env.mock),
		notification.WithDefaultTemplates(),
	)
	require.NoError(t, err)

	hasher := login.NewBcryptHasher(bcrypt.MinCost)
	env.svc = passwordreset.NewPasswordResetService(env.repo, nm, hasher, "https://app.test", opts...)

	env.acct, err = env.repo.Create(context.Background(), account.Account{
		Username:     "ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(env.svc).Routes(r)
	env.router = r
	return env
}

func (env *testEnv) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	env.svc.Wait()
	return rec
}

func TestForgotPasswordUniformResponse(t *testing.T) {
	env := setupTestHandler(t)

	known := env.post("/forgot-password", `{"email":"ana@example.com"}`)
	unknown := env.post("/forgot-password", `{"email":"nobody@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.JSONEq(t, `{"message":"`+ForgotPasswordMessage+`"}`, known.Body.String())
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Len(t, env.mock.Messages(), 1)

	t.Run("NotificationFailureStillUniform", func(t *testing.T) {
		env.mock.SetErr(assert.AnError)
		rec := env.post("/forgot-password", `{"email":"ana@example.com"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, known.Body.String(), rec.Body.String())
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		rec := env.post("/forgot-password", `{"email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResetPasswordFlow(t *testing.T) {
	env := setupTestHandler(t)

	require.Equal(t, http.StatusOK, env.post("/forgot-password", `{"email":"ana@example.com"}`).Code)
	acct, err := env.repo.FindByID(context.Background(), env.acct.ID)
	require.NoError(t, err)
	require.NotNil(t, acct.ResetToken)
	tok := *acct.ResetToken

	rec := env.post("/verify-reset-token", `{"token":"`+tok+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = env.post("/reset-password", `{"token":"`+tok+`","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "PASSWORD_COMPLEXITY")

	rec = env.post("/reset-password", `{"token":"`+tok+`","password":"newpass123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.post("/reset-password", `{"token":"`+tok+`","password":"newpass123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID_OR_EXPIRED")

	rec = env.post("/verify-reset-token", `{"token":"`+tok+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyResetTokenUnknown(t *testing.T) {
	env := setupTestHandler(t)

	rec := env.post("/verify-reset-token", `{"token":"deadbeef"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID_OR_EXPIRED")
}

type brokenCounter struct{}

func (brokenCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("redis: connection refused")
}

func TestForgotPasswordThrottleUnavailable(t *testing.T) {
	throttle := ratelimit.NewThrottle(brokenCounter{}, 3, time.Hour)
	env := setupTestHandler(t, passwordreset.WithResendThrottle(throttle))

	known := env.post("/forgot-password", `{"email":"ana@example.com"}`)
	unknown := env.post("/forgot-password", `{"email":"nobody@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}
