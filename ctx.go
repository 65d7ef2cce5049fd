package identity

import "context"

type contextKey struct{ name string }

var sessionContextKey = &contextKey{"identity:session"}

// WithSession threads the acting identity through a context. Operations that
// need an actor read it back with SessionFromContext, keeping the identity
// explicit instead of ambient package state.
func WithSession(ctx context.Context, session *SessionObject) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the acting identity, or nil when the context
// carries none.
func SessionFromContext(ctx context.Context) *SessionObject {
	if ctx == nil {
		return nil
	}
	if session, ok := ctx.Value(sessionContextKey).(*SessionObject); ok {
		return session
	}
	return nil
}
