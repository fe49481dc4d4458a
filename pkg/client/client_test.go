package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

func newProtectedRouter(secret string, issuer ...string) http.Handler {
	auth := AuthUserMiddleware
	if len(issuer) > 0 {
		auth = RequireAuthUser(issuer[0])
	}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Verifier(NewJWTAuth(secret)))
		r.Use(auth)
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetAuthUser(r)
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(u.AccountID.String() + " " + u.Email))
		})
	})
	return r
}

func TestAuthUserMiddleware(t *testing.T) {
	secret := "test-jwt-secret-key"
	router := newProtectedRouter(secret)
	id := uuid.New()

	tok, _, err := tokengenerator.NewJwtTokenGenerator(secret, "", time.Hour).GenerateToken(tokengenerator.SessionSubject{
		AccountID: id,
		Email:     "ana@example.com",
	})
	require.NoError(t, err)

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: tokengenerator.SessionCookieName, Value: tok})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id.String()+" ana@example.com", rec.Body.String())
	})

	t.Run("BearerHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"authentication required","code":"UNAUTHORIZED"}`, rec.Body.String())
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, _, err := tokengenerator.NewJwtTokenGenerator("other", "", time.Hour).GenerateToken(tokengenerator.SessionSubject{AccountID: id})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: tokengenerator.SessionCookieName, Value: other})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuthUserIssuer(t *testing.T) {
	secret := "test-jwt-secret-key"
	router := newProtectedRouter(secret, "simple-account")
	id := uuid.New()

	do := func(tok string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: tokengenerator.SessionCookieName, Value: tok})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	ours, _, err := tokengenerator.NewJwtTokenGenerator(secret, "simple-account", time.Hour).GenerateToken(tokengenerator.SessionSubject{AccountID: id})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(ours).Code)

	theirs, _, err := tokengenerator.NewJwtTokenGenerator(secret, "someone-else", time.Hour).GenerateToken(tokengenerator.SessionSubject{AccountID: id})
	require.NoError(t, err)
	rec := do(theirs)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	none, _, err := tokengenerator.NewJwtTokenGenerator(secret, "", time.Hour).GenerateToken(tokengenerator.SessionSubject{AccountID: id})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(none).Code)
}

func TestExpiredSession(t *testing.T) {
	secret := "test-jwt-secret-key"
	router := newProtectedRouter(secret)

	issued := time.Now().Add(-2 * time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: tokengenerator.SessionCookieName, Value: tok})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"session expired, please log in again","code":"SESSION_EXPIRED"}`, rec.Body.String())
}
