package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the request session so downstream packages
// (auth, audit) can reach it without an explicit parameter.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the attached session, or nil outside the
// session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
