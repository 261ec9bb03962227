// Package session holds the caller's credentials for the lifetime of one
// dashboard workspace.
//
// A Session is built once (from request cookies, CLI flags, or env) and then
// passed explicitly into every component that needs it. Nothing in this
// module reads credentials from ambient state.
package session

import (
	"net/http"
	"strings"
)

const (
	// TokenCookie and NameCookie are written by the login flow, which lives
	// outside this module.
	TokenCookie = "token"
	NameCookie  = "first_name"

	defaultName = "Member"
)

// Session is an opaque bearer token plus a display name. It is a value type
// and is never mutated after construction.
type Session struct {
	Token string
	Name  string
}

// New returns a Session with surrounding whitespace removed from both fields.
func New(token, name string) Session {
	return Session{
		Token: strings.TrimSpace(token),
		Name:  strings.TrimSpace(name),
	}
}

// HasToken reports whether a bearer token is present.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// DisplayName is the name shown in the "Welcome, ..." banner.
func (s Session) DisplayName() string {
	if s.Name == "" {
		return defaultName
	}
	return s.Name
}

// FromRequest reads the session from the request.
//
// The token comes from the "token" cookie, falling back to an
// "Authorization: Bearer" header so that API-style callers work too.
// The name comes from the "first_name" cookie.
func FromRequest(r *http.Request) Session {
	var token, name string

	if c, err := r.Cookie(TokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		token = BearerToken(r.Header.Get("Authorization"))
	}
	if c, err := r.Cookie(NameCookie); err == nil {
		name = c.Value
	}

	return New(token, name)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
