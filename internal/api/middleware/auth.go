package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kllinic/marketplace/internal/application/services"
	"github.com/kllinic/marketplace/internal/domain/entities"
)

type sessionCtxKey struct{}
type roleCtxKey struct{}

// TokenFromRequest extracts the bearer token, if any
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	// SSE clients cannot set headers; allow the token in the query
	return r.URL.Query().Get("token")
}

// ContextWithSession returns a context carrying an authenticated
// session, as the guard middleware would install it
func ContextWithSession(ctx context.Context, session *entities.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

// SessionFromContext returns the authenticated session placed by the
// guard middleware
func SessionFromContext(ctx context.Context) *entities.Session {
	session, _ := ctx.Value(sessionCtxKey{}).(*entities.Session)
	return session
}

// RoleFromContext returns the resolved role placed by the guard
// middleware
func RoleFromContext(ctx context.Context) entities.Role {
	role, _ := ctx.Value(roleCtxKey{}).(entities.Role)
	return role
}

// RequireRole guards a handler behind the route guard for a role-owned
// resource. Unauthenticated callers get 401; callers holding a
// different role get 403 with the dashboard their role owns.
func RequireRole(guard *services.RouteGuard, required entities.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Evaluate(r.Context(), TokenFromRequest(r), required)

			switch decision.State {
			case services.GuardUnauthenticated:
				writeGuardError(w, http.StatusUnauthorized, "authentication required", "")
				return
			case services.GuardMisrouted:
				writeGuardError(w, http.StatusForbidden, "this resource belongs to another role", decision.RedirectTo)
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, decision.Session)
			ctx = context.WithValue(ctx, roleCtxKey{}, decision.Role)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin guards verification mutations behind the admin email
// allowlist. Anonymous callers get 401; authenticated non-admin
// accounts get 403. An empty allowlist denies every account.
func RequireAdmin(guard *services.RouteGuard, adminEmails []string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[strings.ToLower(email)] = struct{}{}
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := guard.EvaluateSession(r.Context(), TokenFromRequest(r))
			if decision.State != services.GuardAuthorized {
				writeGuardError(w, http.StatusUnauthorized, "authentication required", "")
				return
			}

			if _, ok := allowed[strings.ToLower(decision.Session.Email)]; !ok {
				writeGuardError(w, http.StatusForbidden, "admin access required", "")
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, decision.Session)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSession guards a handler behind authentication only
func RequireSession(guard *services.RouteGuard) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision := guard.EvaluateSession(r.Context(), TokenFromRequest(r))
			if decision.State != services.GuardAuthorized {
				writeGuardError(w, http.StatusUnauthorized, "authentication required", "")
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, decision.Session)
			next(w, r.WithContext(ctx))
		}
	}
}

func writeGuardError(w http.ResponseWriter, status int, message, redirectTo string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": message}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	json.NewEncoder(w).Encode(body)
}
