package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/client"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/profile"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(t *testing.T) (http.Handler, account.Account) {
	t.Helper()
	repo := account.NewInMemoryRepository()
	hasher := login.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	acct, err := repo.Create(context.Background(), account.Account{Username: "ana", Email: "ana@example.com", PasswordHash: hash})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandle(profile.NewProfileService(repo, hasher)).Routes(r)
	return r, acct
}

func withUser(req *http.Request, acct account.Account) *http.Request {
	return req.WithContext(client.WithAuthUser(req.Context(), &client.AuthUser{
		AccountID: acct.ID,
		Username:  acct.Username,
		Email:     acct.Email,
	}))
}

func TestGetMe(t *testing.T) {
	router, acct := setupRouter(t)

	t.Run("WithSession", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/me", nil), acct))
		require.Equal(t, http.StatusOK, rec.Code)

		var p profile.Profile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, acct.ID, p.ID)
		assert.Equal(t, "ana@example.com", p.Email)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("WithoutSession", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestChangePassword(t *testing.T) {
	router, acct := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/me/password",
		strings.NewReader(`{"current_password":"password123","new_password":"newpass123"}`))
	router.ServeHTTP(rec, withUser(req, acct))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/me/password",
		strings.NewReader(`{"current_password":"password123","new_password":"another123"}`))
	router.ServeHTTP(rec, withUser(req, acct))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
