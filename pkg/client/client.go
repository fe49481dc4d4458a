package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

// AuthUser is the identity carried by a verified session token.
type AuthUser struct {
	AccountID uuid.UUID
	Username  string
	Email     string
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("account", i.AccountID.String()),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "account context value " + k.name
}

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// NewJWTAuth returns the HS256 verifier matching tokengenerator's tokens.
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// Verifier finds a session token in the session cookie or the
// Authorization header and records the verification result in the context.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, TokenFromCookie, jwtauth.TokenFromHeader)
}

// TokenFromCookie reads the session cookie.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(tokengenerator.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WithAuthUser returns a copy of ctx carrying u.
func WithAuthUser(ctx context.Context, u *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, u)
}

// GetAuthUser returns the authenticated user placed by AuthUserMiddleware.
func GetAuthUser(r *http.Request) (*AuthUser, bool) {
	u, ok := r.Context().Value(AuthUserKey).(*AuthUser)
	return u, ok && u != nil
}

var errWrongIssuer = errors.New("token issuer mismatch")

// authUserFromContext builds an AuthUser from a token verified by Verifier.
// A non-empty issuer must match the iss claim.
func authUserFromContext(ctx context.Context, issuer string) (*AuthUser, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if issuer != "" {
		if iss, _ := claims["iss"].(string); iss != issuer {
			return nil, errWrongIssuer
		}
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}

	u := &AuthUser{AccountID: id}
	u.Username, _ = claims["username"].(string)
	u.Email, _ = claims["email"].(string)
	return u, nil
}
