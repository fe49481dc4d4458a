package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	do := func(h http.Handler, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("LimitsPerIP", func(t *testing.T) {
		h := NewMiddleware(Config{Enabled: true, RequestsPerSecond: 0.01, Burst: 2})(ok)

		assert.Equal(t, http.StatusOK, do(h, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, do(h, "10.0.0.1:1234").Code)

		rec := do(h, "10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"error":"too many requests, please try again later","code":"RATE_LIMIT_EXCEEDED"}`, rec.Body.String())

		assert.Equal(t, http.StatusOK, do(h, "10.0.0.2:1234").Code)
	})

	t.Run("Disabled", func(t *testing.T) {
		h := NewMiddleware(Config{Enabled: false, RequestsPerSecond: 0.01, Burst: 1})(ok)
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, do(h, "10.0.0.3:1234").Code)
		}
	})
}
