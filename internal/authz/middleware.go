package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/marquee-cms/marquee/internal/platform/httpx"
	"github.com/marquee-cms/marquee/internal/shared"
)

// PrincipalSource loads the authorization view of an account. Implementations
// must read current stored state on every call; grants are never cached
// across requests.
type PrincipalSource interface {
	PrincipalByID(ctx context.Context, id int64) (*Principal, error)
}

// Middleware wires the enforcement gate into HTTP handlers.
type Middleware struct {
	Engine *Engine
	Source PrincipalSource
	Logger *slog.Logger
	// Observer, when set, receives every grant decision made by the gate.
	Observer func(permission string, allowed bool)
}

// WithPrincipal resolves the session user into a Principal and stores it in
// the request context. Unauthenticated requests pass through with no
// principal; the permission guards further down reject them.
func (m Middleware) WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.sessionUserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := m.Source.PrincipalByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Stale session for a deleted account.
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("resolve principal", slog.Int64("user_id", id), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// Require guards a route group with a single permission. On deny the request
// is terminated with a 403 problem response naming the missing permission.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return m.RequireAny(permission)
}

// RequireAny admits the request when the principal holds at least one of the
// given permissions. The problem detail names the first permission so a
// denied admin can see what is missing.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := PrincipalFromContext(r.Context())
			for _, perm := range normalized {
				if m.decide(principal, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission: "+normalized[0])
		})
	}
}

// Allowed is the non-terminating query form, used to branch on a permission
// (for example to include an action affordance in a list payload) without
// ending the request.
func (m Middleware) Allowed(ctx context.Context, permission string) bool {
	return m.decide(PrincipalFromContext(ctx), permission)
}

func (m Middleware) decide(p *Principal, permission string) bool {
	allowed := m.Engine.HasPermission(p, permission)
	if m.Observer != nil {
		m.Observer(permission, allowed)
	}
	return allowed
}

func (m Middleware) sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
