// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/avoronov/bankadmin/internal/models"
	"github.com/avoronov/bankadmin/internal/session"
)

type ctxKey string

const principalKey ctxKey = "principal"

// PrincipalLoader resolves a stored session identifier to a principal.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, sessionID string) (models.Principal, error)
}

// RequireUser admits only logged-in, active users. Anything else (no
// session, a stale or malformed identifier, a deactivated user, an
// administrator session) is flashed and redirected to the login chooser.
func RequireUser(sessions *session.Manager, loader PrincipalLoader) func(http.Handler) http.Handler {
	return requirePrincipal(sessions, loader, func(p models.Principal) bool {
		user, ok := p.(*models.User)
		return ok && user.Active
	})
}

// RequireAdmin admits only logged-in administrators.
func RequireAdmin(sessions *session.Manager, loader PrincipalLoader) func(http.Handler) http.Handler {
	return requirePrincipal(sessions, loader, func(p models.Principal) bool {
		return p.IsAdmin()
	})
}

func requirePrincipal(sessions *session.Manager, loader PrincipalLoader, admit func(models.Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessions.PrincipalID(r)
			if !ok {
				sessions.RedirectToLogin(w, r)
				return
			}
			principal, err := loader.LoadPrincipal(r.Context(), id)
			if err != nil || !admit(principal) {
				sessions.RedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal returns a context carrying the given principal, as set by
// the auth middlewares.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated principal from the
// request context. Returns nil if not set.
func PrincipalFromContext(ctx context.Context) models.Principal {
	if p, ok := ctx.Value(principalKey).(models.Principal); ok {
		return p
	}
	return nil
}

// UserFromContext extracts the authenticated user from the request context.
// Returns nil when the principal is absent or not a user.
func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(principalKey).(*models.User); ok {
		return u
	}
	return nil
}
