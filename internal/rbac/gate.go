package rbac

import (
	"context"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/session"
)

// Identity describes the authenticated principal resolved from a session.
type Identity struct {
	UserID    uint64
	SessionID string
	Role      string
}

type identityContextKey struct{}

// NewContextWithIdentity returns a context carrying the given identity.
func NewContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity attached by an authorization gate,
// or nil if the context never passed through one.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// Gate is the shared authorization core behind both handler conventions.
// The convention is chosen at registration time by wrapping a handler with
// ForPairedHandler or ForContextualHandler; the decision logic is identical.
type Gate struct {
	svc        *Service
	required   []string
	requireAll bool
}

// NewGate creates a gate granting access when the session's user holds at
// least one of the required permissions. With no permissions the gate only
// requires an authenticated session.
func NewGate(svc *Service, required ...string) *Gate {
	return &Gate{svc: svc, required: required}
}

// NewGateAll creates a gate granting access only when the session's user
// holds every one of the required permissions.
func NewGateAll(svc *Service, required ...string) *Gate {
	return &Gate{svc: svc, required: required, requireAll: true}
}

// Authorize resolves the session and checks the gate's permission set.
//
// It returns ErrUnauthenticated when no valid session exists, a
// *PermissionDeniedError when the user lacks the required permissions, and
// the underlying store error unchanged on infrastructure failure. Callers
// must keep those apart: only the second one means "forbidden".
func (g *Gate) Authorize(sessionID string) (*Identity, error) {
	if sessionID == "" {
		countDecision(outcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		countDecision(outcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	if sessData.User.ID == 0 {
		countDecision(outcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	id := &Identity{
		UserID:    sessData.User.ID,
		SessionID: sessionID,
		Role:      sessData.Role,
	}

	// Operator bypass: the role name snapshot is compared against "admin"
	// exactly, case-sensitively, without any catalog lookup. Keeping this
	// independent of the permission store means a store outage fails ordinary
	// checks closed without locking operators out.
	if sessData.Role == RoleAdmin {
		countDecision(outcomeBypass)
		return id, nil
	}

	if len(g.required) == 0 {
		countDecision(outcomeGranted)
		return id, nil
	}

	var (
		ok  bool
		err error
	)

	if g.requireAll {
		ok, err = g.svc.HasAllPermissions(id.UserID, g.required)
	} else {
		ok, err = g.svc.HasAnyPermission(id.UserID, g.required)
	}

	if err != nil {
		countDecision(outcomeError)
		return nil, err
	}

	if !ok {
		countDecision(outcomeDenied)
		return nil, &PermissionDeniedError{Required: g.required, All: g.requireAll}
	}

	countDecision(outcomeGranted)

	return id, nil
}

// ContextualHandler is a handler in the contextual convention: it receives
// the authorized identity through its context (see IdentityFromContext) and
// reports failure through its return value.
type ContextualHandler func(ctx context.Context) error

// ForContextualHandler wraps h so it runs only for an authorized session.
// On success h is invoked with an identity-enriched context; on denial the
// structured error is returned and h is never invoked.
func ForContextualHandler(g *Gate, h ContextualHandler) func(ctx context.Context, sessionID string) error {
	return func(ctx context.Context, sessionID string) error {
		id, err := g.Authorize(sessionID)
		if err != nil {
			return err
		}

		return h(NewContextWithIdentity(ctx, id))
	}
}

// WithAuthenticated wraps h in the contextual convention, requiring only an
// authenticated session.
func WithAuthenticated(svc *Service, h ContextualHandler) func(ctx context.Context, sessionID string) error {
	return ForContextualHandler(NewGate(svc), h)
}

// WithAnyPermission wraps h in the contextual convention, requiring at least
// one of the given permissions.
func WithAnyPermission(svc *Service, permissions []string, h ContextualHandler) func(ctx context.Context, sessionID string) error {
	return ForContextualHandler(NewGate(svc, permissions...), h)
}
