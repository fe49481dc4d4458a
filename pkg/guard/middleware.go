package guard

import (
	"log/slog"
	"net/http"

	"github.com/tendant/simple-account/pkg/tokengenerator"
)

// SessionValidator reports whether a session token is still good.
type SessionValidator func(token string) bool

type Option func(*guard)

// WithSessionValidator makes the guard treat an invalid or expired session
// token as absent and clear the stale cookie.
func WithSessionValidator(v SessionValidator) Option {
	return func(g *guard) {
		g.validate = v
	}
}

// WithCookieSetter sets how stale cookies are cleared.
func WithCookieSetter(c tokengenerator.CookieSetter) Option {
	return func(g *guard) {
		g.cookies = c
	}
}

type guard struct {
	policy   Policy
	validate SessionValidator
	cookies  tokengenerator.CookieSetter
}

// Middleware redirects page requests according to policy.
func Middleware(policy Policy, opts ...Option) func(http.Handler) http.Handler {
	g := &guard{policy: policy, cookies: tokengenerator.NewCookieSetter(false)}
	for _, opt := range opts {
		opt(g)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasSession := g.hasSession(w, r)

			d := g.policy.Decide(r.URL.Path, hasSession)
			if d.Action == Redirect {
				slog.Debug("Guard redirect", "path", r.URL.Path, "location", d.Location)
				http.Redirect(w, r, d.Location, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *guard) hasSession(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(tokengenerator.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	if g.validate == nil {
		return true
	}
	if g.validate(cookie.Value) {
		return true
	}
	g.cookies.ClearCookie(w)
	return false
}
