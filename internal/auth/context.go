package auth

import (
	"context"
	"net/http"

	"moviegate/models"
	"moviegate/services/catalog"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeySession is the key for the browsing session in the context
	ContextKeySession ContextKey = "session"
	// ContextKeyController is the key for the session's catalog controller
	ContextKeyController ContextKey = "controller"
)

// WithSession attaches a validated session and its controller to ctx.
func WithSession(ctx context.Context, session models.Session, controller *catalog.Controller) context.Context {
	ctx = context.WithValue(ctx, ContextKeySession, session)
	return context.WithValue(ctx, ContextKeyController, controller)
}

// GetSession retrieves the browsing session from the request context.
func GetSession(r *http.Request) (models.Session, bool) {
	session, ok := r.Context().Value(ContextKeySession).(models.Session)
	return session, ok
}

// GetController retrieves the session's catalog controller, or nil.
func GetController(r *http.Request) *catalog.Controller {
	if c, ok := r.Context().Value(ContextKeyController).(*catalog.Controller); ok {
		return c
	}
	return nil
}
