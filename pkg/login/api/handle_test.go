package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := account.NewInMemoryRepository()
	hasher := login.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), account.Account{Username: "ana", Email: "ana@example.com", PasswordHash: hash})
	require.NoError(t, err)

	svc := login.NewLoginService(repo, hasher, tokengenerator.NewJwtTokenGenerator("secret", "", time.Hour))
	r := chi.NewRouter()
	NewHandle(svc, tokengenerator.NewCookieSetter(false)).Routes(r)
	return r
}

func TestLoginHandler(t *testing.T) {
	router := setupRouter(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("SetsSessionCookie", func(t *testing.T) {
		rec := post(`{"email":"ana@example.com","password":"password123"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, tokengenerator.SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("UniformFailure", func(t *testing.T) {
		wrong := post(`{"email":"ana@example.com","password":"nope-nope"}`)
		unknown := post(`{"email":"bob@example.com","password":"nope-nope"}`)

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
		assert.Empty(t, wrong.Result().Cookies())
	})

	t.Run("Validation", func(t *testing.T) {
		rec := post(`{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	})
}

func TestLogoutHandler(t *testing.T) {
	router := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokengenerator.SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
