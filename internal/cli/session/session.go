// Package session owns the authenticated session: it logs in, registers,
// logs out, restores persisted credentials at startup and tears the session
// down when the backend rejects the token.
package session

import (
	"errors"
	"slices"

	"github.com/castvote-dev/castvote/internal/cli/client"
)

// AdminRole marks an administrator in a login response's roles
const AdminRole = "ADMIN"

var (
	// ErrMalformedPersistedSession means the stored user record could not be parsed
	ErrMalformedPersistedSession = errors.New("malformed persisted session")

	// ErrMissingToken means the backend accepted a login without issuing a token
	ErrMissingToken = errors.New("login response did not include a token")

	// ErrInvalidEndpoint is returned for unusable backend URLs
	ErrInvalidEndpoint = errors.New("invalid backend URL")
)

// Session is the currently authenticated actor
type Session struct {
	UserID      client.ID
	DisplayName string
	Email       string
	IsAdmin     bool
	Token       string
}

// persistedUser is the serialized form kept under the "user" key
type persistedUser struct {
	ID      client.ID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}

// Snapshot is a read-only view of the manager's state
type Snapshot struct {
	Restoring bool
	// Session is nil when nobody is logged in
	Session *Session
}

// Authenticated reports whether a session exists
func (s Snapshot) Authenticated() bool {
	return s.Session != nil
}

// IsAdmin reports whether the session has admin privilege
func (s Snapshot) IsAdmin() bool {
	return s.Session != nil && s.Session.IsAdmin
}

// Navigation tells the view layer where to go after an operation
type Navigation struct {
	// Route is empty when no navigation is requested
	Route string
	// Reload asks for a process restart before the next request
	Reload bool
	// Notice is a success message for the user
	Notice string
}

func isAdmin(roles []string) bool {
	return slices.Contains(roles, AdminRole)
}

// LoginFailureMessage is the inline text shown next to the login form
func LoginFailureMessage(err error) string {
	if client.StatusOf(err) == 401 {
		return "Invalid email or password. Please try again."
	}
	return "An error occurred during login. Please try again later."
}
