// Package guard decides, per page request, whether to let it through or
// redirect based on whether the visitor holds a session cookie.
//
//	public path, session present  -> redirect to LandingPath
//	other path,  session absent   -> redirect to LoginPath
//	otherwise                     -> allow
//
// Paths outside the policy's protected set are always allowed.
package guard

import "strings"

// Action is what the guard does with a request.
type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome for one request.
type Decision struct {
	Action   Action
	Location string
}

// Policy describes which paths are public and where to send visitors.
type Policy struct {
	PublicPaths []string
	LandingPath string
	LoginPath   string

	// ProtectedPrefixes are paths the guard applies to, matched exactly or
	// as a "prefix/" subtree. Public paths are always included.
	ProtectedPrefixes []string
	// ProtectedExact are paths matched exactly, such as "/".
	ProtectedExact []string
}

// DefaultPolicy covers the account pages.
func DefaultPolicy() Policy {
	return Policy{
		PublicPaths:       []string{"/login", "/signup", "/verifyemail", "/forgot-password", "/reset-password"},
		LandingPath:       "/profile",
		LoginPath:         "/login",
		ProtectedPrefixes: []string{"/profile"},
		ProtectedExact:    []string{"/"},
	}
}

// IsPublic reports whether path is one of the policy's public paths.
func (p Policy) IsPublic(path string) bool {
	for _, pub := range p.PublicPaths {
		if path == pub {
			return true
		}
	}
	return false
}

// Matches reports whether the guard applies to path at all.
func (p Policy) Matches(path string) bool {
	if p.IsPublic(path) {
		return true
	}
	for _, exact := range p.ProtectedExact {
		if path == exact {
			return true
		}
	}
	for _, prefix := range p.ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// Decide applies the policy to a request for path.
func (p Policy) Decide(path string, hasSession bool) Decision {
	if !p.Matches(path) {
		return Decision{Action: Allow}
	}

	public := p.IsPublic(path)
	switch {
	case public && hasSession:
		return Decision{Action: Redirect, Location: p.LandingPath}
	case !public && !hasSession:
		return Decision{Action: Redirect, Location: p.LoginPath}
	default:
		return Decision{Action: Allow}
	}
}
