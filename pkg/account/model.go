package account

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is one registered user and the credential state attached to it.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	IsVerified   bool      `json:"is_verified"`

	VerifyToken       *string    `json:"verify_token,omitempty"`
	VerifyTokenExpiry *time.Time `json:"verify_token_expiry,omitempty"`
	ResetToken        *string    `json:"reset_token,omitempty"`
	ResetTokenExpiry  *time.Time `json:"reset_token_expiry,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLiveVerifyToken reports whether a verification token is present and
// expires strictly after now.
func (a Account) HasLiveVerifyToken(now time.Time) bool {
	return a.VerifyToken != nil && a.VerifyTokenExpiry != nil && a.VerifyTokenExpiry.After(now)
}

// HasLiveResetToken reports whether a reset token is present and expires
// strictly after now.
func (a Account) HasLiveResetToken(now time.Time) bool {
	return a.ResetToken != nil && a.ResetTokenExpiry != nil && a.ResetTokenExpiry.After(now)
}

// TokenUpdate is a token value with its absolute expiry.
type TokenUpdate struct {
	Token     string
	ExpiresAt time.Time
}

// AccountUpdate lists the fields an Update call changes. Nil/false fields
// are left untouched. IsVerified can only be raised, never lowered.
type AccountUpdate struct {
	Username     *string
	PasswordHash *string
	MarkVerified bool

	VerifyToken      *TokenUpdate
	ClearVerifyToken bool
	ResetToken       *TokenUpdate
	ClearResetToken  bool
}

func (u AccountUpdate) apply(a *Account, now time.Time) {
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
	if u.MarkVerified {
		a.IsVerified = true
	}
	switch {
	case u.VerifyToken != nil:
		tok, exp := u.VerifyToken.Token, u.VerifyToken.ExpiresAt.UTC()
		a.VerifyToken, a.VerifyTokenExpiry = &tok, &exp
	case u.ClearVerifyToken:
		a.VerifyToken, a.VerifyTokenExpiry = nil, nil
	}
	switch {
	case u.ResetToken != nil:
		tok, exp := u.ResetToken.Token, u.ResetToken.ExpiresAt.UTC()
		a.ResetToken, a.ResetTokenExpiry = &tok, &exp
	case u.ClearResetToken:
		a.ResetToken, a.ResetTokenExpiry = nil, nil
	}
	a.UpdatedAt = now.UTC()
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func tokenMatches(stored *string, candidate string) bool {
	if stored == nil || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(candidate)) == 1
}

func (a *Account) clone() *Account {
	c := *a
	c.VerifyToken = clonePtr(a.VerifyToken)
	c.VerifyTokenExpiry = clonePtr(a.VerifyTokenExpiry)
	c.ResetToken = clonePtr(a.ResetToken)
	c.ResetTokenExpiry = clonePtr(a.ResetTokenExpiry)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
