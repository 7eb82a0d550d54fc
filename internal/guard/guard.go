// Package guard gates protected content on sign-in state and role.
//
// A Guard always starts in Loading and moves to exactly one terminal state once the
// caller's identity and profile are resolved. Nothing but a loading indicator may be
// rendered before that.
package guard

import (
	"ss-uniforms/internal/models"
	"ss-uniforms/internal/policy"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type State int

const (
	Loading State = iota
	Unauthenticated
	AuthenticatedNoProfile
	Authorized
	Forbidden
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedNoProfile:
		return "authenticated-no-profile"
	case Authorized:
		return "authorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of the identity and profile lookups.
type Resolution struct {
	UserID  string
	Profile *models.Profile
}

type Guard struct {
	required models.Role
	state    State
}

// New returns a guard in the Loading state. An empty role means any
// authenticated profile is enough.
func New(required models.Role) *Guard {
	return &Guard{required: required, state: Loading}
}

func (g *Guard) State() State { return g.state }

// Terminal reports whether the guard has left Loading.
func (g *Guard) Terminal() bool { return g.state != Loading }

// Resolve performs the single transition out of Loading. Later calls are ignored.
func (g *Guard) Resolve(r Resolution) State {
	if g.Terminal() {
		return g.state
	}
	switch {
	case r.UserID == "":
		g.state = Unauthenticated
	case r.Profile == nil:
		g.state = AuthenticatedNoProfile
	case policy.Satisfies(r.Profile, g.required):
		g.state = Authorized
	default:
		g.state = Forbidden
	}
	return g.state
}

// Render is true only once the guarded content may be shown.
func (g *Guard) Render() bool { return g.state == Authorized }

// Redirect returns where the caller must be sent, or "" when no redirect applies.
func (g *Guard) Redirect() string {
	switch g.state {
	case Unauthenticated, AuthenticatedNoProfile:
		return LoginPath
	case Forbidden:
		return HomePath
	default:
		return ""
	}
}
