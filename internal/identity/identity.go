// Package identity carries the authenticated actor through the request context.
//
// Token validation happens upstream (the auth gateway terminates the bearer
// token and forwards the resolved identity); this package only consumes the
// result and makes it available to authorization and write paths.
package identity

import (
	"context"
	"strings"
)

// SystemUsername marks internal writes that bypass field permission checks.
const SystemUsername = "system"

// Actor describes the acting identity for one request.
type Actor struct {
	UserID        string
	Username      string
	TenantID      string
	Authenticated bool
}

// IsSystem reports whether the actor is the internal system identity.
func (a Actor) IsSystem() bool {
	return strings.EqualFold(a.Username, SystemUsername)
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The zero Actor is
// returned for requests that never passed the extraction middleware.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
