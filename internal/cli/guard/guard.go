// Package guard decides whether a route may render for the current session state.
package guard

// State is the session state as seen by the guard
type State int

const (
	Restoring State = iota
	Unauthenticated
	AuthenticatedUser
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedUser:
		return "authenticated-user"
	case AuthenticatedAdmin:
		return "authenticated-admin"
	default:
		return "unknown"
	}
}

// Route is a navigation target
type Route struct {
	Path          string
	RequiresAuth  bool
	RequiresAdmin bool
}

var (
	Home         = Route{Path: "/"}
	Login        = Route{Path: "/login"}
	Register     = Route{Path: "/register"}
	Unauthorized = Route{Path: "/unauthorized"}
	Vote         = Route{Path: "/vote", RequiresAuth: true}
	Results      = Route{Path: "/results", RequiresAuth: true}
	Admin        = Route{Path: "/admin", RequiresAuth: true, RequiresAdmin: true}
)

// Routes lists every known route
var Routes = []Route{Home, Login, Register, Unauthorized, Vote, Results, Admin}

// Lookup finds a route by path
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Outcome of a guard evaluation
type Outcome int

const (
	Allow Outcome = iota
	Wait
	Redirect
)

// Decision is the guard's answer for one navigation
type Decision struct {
	Outcome Outcome
	// Target is set for Redirect
	Target string
}

// Evaluate decides whether route may render in state. Nothing is cached.
func Evaluate(route Route, state State) Decision {
	if !route.RequiresAuth && !route.RequiresAdmin {
		return Decision{Outcome: Allow}
	}

	switch state {
	case Restoring:
		return Decision{Outcome: Wait}
	case AuthenticatedUser, AuthenticatedAdmin:
	default:
		return Decision{Outcome: Redirect, Target: Login.Path}
	}

	if route.RequiresAdmin && state != AuthenticatedAdmin {
		return Decision{Outcome: Redirect, Target: Unauthorized.Path}
	}

	return Decision{Outcome: Allow}
}
