package client

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

var (
	errAuthRequired   = idmerrors.New(idmerrors.ErrCodeUnauthorized, "authentication required")
	errSessionExpired = idmerrors.New(idmerrors.ErrCodeSessionExpired, "session expired, please log in again")
)

// AuthUserMiddleware requires a valid session verified by Verifier and puts
// the AuthUser in the request context. Returns 401 otherwise.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return RequireAuthUser("")(next)
}

// RequireAuthUser is AuthUserMiddleware that also rejects tokens whose iss
// claim differs from issuer. An empty issuer accepts any.
func RequireAuthUser(issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, err := authUserFromContext(r.Context(), issuer)
			if err != nil {
				slog.Debug("Unauthenticated request to protected resource", "path", r.URL.Path, "err", err)
				e := errAuthRequired
				if errors.Is(err, jwtauth.ErrExpired) {
					e = errSessionExpired
				}
				render.Status(r, e.HTTPStatusCode())
				render.JSON(w, r, map[string]string{
					"error": e.Message,
					"code":  string(e.Code),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), authUser)))
		})
	}
}
