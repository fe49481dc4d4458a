package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatchesWrappedInstance(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")

	t.Run("StoreUnavailable", func(t *testing.T) {
		err := fmt.Errorf("find account: %w", StoreUnavailable(cause))
		assert.True(t, errors.Is(err, ErrStoreUnavailable))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("NotificationFailed", func(t *testing.T) {
		err := NotificationFailed(cause)
		assert.True(t, errors.Is(err, ErrNotificationFailed))
		assert.Equal(t, ErrCodeNotificationFailed, GetCode(err))
	})

	t.Run("PlainErrorIsInternal", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(cause))
		assert.Equal(t, "internal server error", GetMessage(cause))
	})
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyVerified, http.StatusConflict},
		{ErrInvalidOrExpired, http.StatusBadRequest},
		{ErrNotificationFailed, http.StatusBadGateway},
		{ErrStoreUnavailable, http.StatusServiceUnavailable},
		{ErrEmailTaken, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{New(ErrCodeSessionExpired, "session expired"), http.StatusUnauthorized},
		{New(ErrCodeForbidden, "registration is disabled"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(GetCode(tt.err)), func(t *testing.T) {
			assert.Equal(t, tt.status, MapErrorCodeToHTTPStatus(GetCode(tt.err)))
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := ValidationFailed(map[string]interface{}{"email": "required"}).WithDetail("password", "min")
	assert.Equal(t, "required", GetDetails(err)["email"])
	assert.Equal(t, "min", GetDetails(err)["password"])
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}
