package auth

import "context"

type contextKey string

const contextKeyActor contextKey = "auth.actor"

// WithActor stores the authenticated actor in context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, contextKeyActor, actor)
}

// ActorFromContext extracts the authenticated actor from context.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if actor, ok := ctx.Value(contextKeyActor).(string); ok {
		return actor
	}
	return ""
}
