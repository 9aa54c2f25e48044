package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role classifies the authenticated caller.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of an operation. It is extracted from
// the bearer token once per request and threaded explicitly into domain
// services so ownership checks stay testable in isolation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the authenticated actor for the request.
// The zero Actor is returned when no authentication middleware ran.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey).(Actor)
	return a
}
