package login

import (
	"regexp"
	"unicode/utf8"

	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

// DefaultMinPasswordLength is the shortest password accepted at signup and
// password reset.
const DefaultMinPasswordLength = 8

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// PasswordPolicy defines the requirements for password complexity
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
}

// DefaultPasswordPolicy only enforces the minimum length.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: DefaultMinPasswordLength}
}

var (
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

// Check returns a PASSWORD_COMPLEXITY error describing the first rule the
// password breaks.
func (p PasswordPolicy) Check(password string) error {
	fail := func(msg string) error {
		return idmerrors.New(idmerrors.ErrCodePasswordComplexity, msg).
			WithDetail("min_length", p.MinLength)
	}

	if utf8.RuneCountInString(password) < p.MinLength {
		return fail("password is too short")
	}
	if len(password) > MaxPasswordBytes {
		return fail("password is too long")
	}
	if p.RequireUppercase && !upperRe.MatchString(password) {
		return fail("password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !lowerRe.MatchString(password) {
		return fail("password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !digitRe.MatchString(password) {
		return fail("password must contain at least one digit")
	}
	return nil
}
