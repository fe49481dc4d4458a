package tokengenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionExpiry is the lifetime of a login session.
const DefaultSessionExpiry = 24 * time.Hour

// ErrInvalidToken is returned by ParseToken for any token that is malformed,
// badly signed, expired or issued by someone else.
var ErrInvalidToken = errors.New("invalid session token")

// Claims struct for JWT claims
type Claims struct {
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// AccountID returns the subject as a UUID.
func (c *Claims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// SessionSubject is the identity a session token is issued for.
type SessionSubject struct {
	AccountID     uuid.UUID
	Username      string
	Email         string
	EmailVerified bool
}

// JwtTokenGenerator issues and parses HS256 session tokens.
type JwtTokenGenerator struct {
	Secret string
	Issuer string
	Expiry time.Duration
	now    func() time.Time
}

// NewJwtTokenGenerator creates a new JwtTokenGenerator. A non-positive
// expiry falls back to DefaultSessionExpiry.
func NewJwtTokenGenerator(secret, issuer string, expiry time.Duration) *JwtTokenGenerator {
	if expiry <= 0 {
		expiry = DefaultSessionExpiry
	}
	return &JwtTokenGenerator{
		Secret: secret,
		Issuer: issuer,
		Expiry: expiry,
		now:    time.Now,
	}
}

// GenerateToken signs a session token for s and returns it with its expiry.
func (g *JwtTokenGenerator) GenerateToken(s SessionSubject) (string, time.Time, error) {
	now := g.now().UTC()
	claims := Claims{
		Username:      s.Username,
		Email:         s.Email,
		EmailVerified: s.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(g.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    g.Issuer,
			Subject:   s.AccountID.String(),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken verifies tokenStr and returns its claims.
func (g *JwtTokenGenerator) ParseToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	}
	if g.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(g.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

// ValidSession reports whether tokenStr is a currently valid session token.
func (g *JwtTokenGenerator) ValidSession(tokenStr string) bool {
	_, err := g.ParseToken(tokenStr)
	return err == nil
}
