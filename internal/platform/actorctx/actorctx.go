// Package actorctx carries the acting user through a request context.
//
// The unit-of-work layer resolves the actor from here for audit stamping;
// middleware is the only writer.
package actorctx

import (
	"context"
	"strings"
)

type ctxKey struct{}

// Actor identifies the authenticated principal performing a request.
type Actor struct {
	ID    string
	Email string
}

// WithActor returns a context carrying the given actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFrom extracts the actor from ctx, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	if !ok || strings.TrimSpace(a.ID) == "" {
		return Actor{}, false
	}
	return a, true
}

// ActorID returns the acting user id or "" when the context is anonymous.
func ActorID(ctx context.Context) string {
	a, ok := ActorFrom(ctx)
	if !ok {
		return ""
	}
	return a.ID
}
