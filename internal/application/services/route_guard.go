package services

import (
	"context"
	"errors"

	"github.com/kllinic/marketplace/internal/domain/entities"
	"github.com/kllinic/marketplace/internal/domain/providers"
	"github.com/kllinic/marketplace/internal/infrastructure/observability"
)

// GuardState is where a guarded request stands in the access decision
type GuardState int

const (
	// GuardInit means evaluation has not started
	GuardInit GuardState = iota

	// GuardAwaitingSession means the session lookup has not completed
	GuardAwaitingSession

	// GuardAwaitingRole means the session exists but the role lookup
	// has not completed
	GuardAwaitingRole

	// GuardAuthorized means the caller holds the required role
	GuardAuthorized

	// GuardUnauthenticated means there is no session
	GuardUnauthenticated

	// GuardMisrouted means the caller is authenticated but their role
	// does not own the requested resource
	GuardMisrouted
)

func (s GuardState) String() string {
	switch s {
	case GuardInit:
		return "init"
	case GuardAwaitingSession:
		return "awaiting_session"
	case GuardAwaitingRole:
		return "awaiting_role"
	case GuardAuthorized:
		return "authorized"
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardMisrouted:
		return "misrouted"
	}
	return "unknown"
}

// Terminal reports whether the state is a final access decision
func (s GuardState) Terminal() bool {
	switch s {
	case GuardAuthorized, GuardUnauthenticated, GuardMisrouted:
		return true
	}
	return false
}

// GuardDecision is the outcome of evaluating access to a role-owned
// resource. RedirectTo is set on misroutes so the caller can be sent to
// the dashboard their role actually owns.
type GuardDecision struct {
	State      GuardState
	Session    *entities.Session
	Role       entities.Role
	RedirectTo string
}

// RouteGuard decides access to role-owned resources. It advances
// through its states strictly in order; a request is never denied
// while the information needed to decide is still outstanding, so a
// slow lookup cannot be misread as a misroute.
type RouteGuard struct {
	backend providers.AuthBackend
	roles   *RoleService
}

// NewRouteGuard creates a new route guard
func NewRouteGuard(backend providers.AuthBackend, roles *RoleService) *RouteGuard {
	return &RouteGuard{
		backend: backend,
		roles:   roles,
	}
}

// Evaluate walks the guard from init to one of the three terminal
// states for a resource owned by required.
func (g *RouteGuard) Evaluate(ctx context.Context, token string, required entities.Role) GuardDecision {
	logger := observability.LoggerFromContext(ctx)
	state := GuardAwaitingSession

	if token == "" {
		return GuardDecision{State: GuardUnauthenticated}
	}

	session, err := g.backend.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, providers.ErrSessionMissing) {
			logger.Warn().Err(err).Str("guard_state", state.String()).Msg("Session lookup failed")
		}
		return GuardDecision{State: GuardUnauthenticated}
	}

	state = GuardAwaitingRole
	resolution := g.roles.ResolveOrFallback(ctx, session.UserID)

	switch resolution.State {
	case entities.ResolutionUnknown:
		// Lookup failed and fallback is disabled; deny without
		// claiming the caller holds a wrong role
		logger.Warn().
			Str("guard_state", state.String()).
			Str("user_id", session.UserID).
			Msg("Role unresolved, treating as unauthenticated")
		return GuardDecision{State: GuardUnauthenticated, Session: session}

	case entities.ResolutionNone:
		return GuardDecision{
			State:      GuardMisrouted,
			Session:    session,
			RedirectTo: "/",
		}
	}

	role := resolution.Role
	if role != required {
		return GuardDecision{
			State:      GuardMisrouted,
			Session:    session,
			Role:       role,
			RedirectTo: role.DashboardPath(),
		}
	}

	return GuardDecision{
		State:   GuardAuthorized,
		Session: session,
		Role:    role,
	}
}

// EvaluateSession is the guard for resources that need authentication
// but no particular role
func (g *RouteGuard) EvaluateSession(ctx context.Context, token string) GuardDecision {
	if token == "" {
		return GuardDecision{State: GuardUnauthenticated}
	}

	session, err := g.backend.GetSession(ctx, token)
	if err != nil {
		return GuardDecision{State: GuardUnauthenticated}
	}

	return GuardDecision{State: GuardAuthorized, Session: session}
}
