package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

func TestDecide(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name       string
		path       string
		hasSession bool
		want       Decision
	}{
		{"PublicWithSession", "/login", true, Decision{Action: Redirect, Location: "/profile"}},
		{"PublicWithoutSession", "/login", false, Decision{Action: Allow}},
		{"SignupWithSession", "/signup", true, Decision{Action: Redirect, Location: "/profile"}},
		{"ProfileWithoutSession", "/profile", false, Decision{Action: Redirect, Location: "/login"}},
		{"ProfileSubpathWithoutSession", "/profile/settings", false, Decision{Action: Redirect, Location: "/login"}},
		{"ProfileWithSession", "/profile", true, Decision{Action: Allow}},
		{"RootWithoutSession", "/", false, Decision{Action: Redirect, Location: "/login"}},
		{"ResetWithoutSession", "/reset-password", false, Decision{Action: Allow}},
		{"UnmatchedPath", "/assets/app.js", false, Decision{Action: Allow}},
		{"ProfileLookalike", "/profiles", false, Decision{Action: Allow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Decide(tt.path, tt.hasSession))
		})
	}
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(h http.Handler, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: tokengenerator.SessionCookieName, Value: token})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("PresenceOnly", func(t *testing.T) {
		h := Middleware(DefaultPolicy())(next)

		rec := serve(h, "/login", "anything")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile", rec.Header().Get("Location"))

		rec = serve(h, "/profile", "")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		assert.Equal(t, http.StatusOK, serve(h, "/profile", "anything").Code)
	})

	t.Run("StaleSessionTreatedAsAbsent", func(t *testing.T) {
		valid := func(tok string) bool { return tok == "good" }
		h := Middleware(DefaultPolicy(), WithSessionValidator(valid))(next)

		rec := serve(h, "/login", "expired")
		assert.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)

		rec = serve(h, "/profile", "expired")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		assert.Equal(t, http.StatusOK, serve(h, "/profile", "good").Code)
	})
}
