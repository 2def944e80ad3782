package rbac

import (
	"log/slog"
	"net/http"

	"github.com/credisphere/credisphere/internal/platform/httpx"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Registry *Registry
	Logger   *slog.Logger
}

// Check decides whether p may exercise perm. It never panics: a missing
// principal, an inactive one or an unknown role all deny.
func (m Middleware) Check(p *Principal, perm string) Decision {
	switch {
	case p == nil:
		return deny(ReasonNoPrincipal)
	case !p.Active:
		return deny(ReasonInactive)
	case len(m.Registry.Permissions(p.Role)) == 0:
		return deny(ReasonUnknownRole)
	case !m.Registry.Has(p.Role, perm):
		return deny(ReasonMissingPermission)
	}
	return allow()
}

// Require ensures the current principal holds perm.
func (m Middleware) Require(perm string) func(http.Handler) http.Handler {
	return m.RequireAll(perm)
}

// RequireAny ensures the current principal has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.gate(normalized, func(p *Principal) Decision {
		var last Decision
		for _, perm := range normalized {
			last = m.Check(p, perm)
			if last.Allowed {
				return last
			}
		}
		return last
	})
}

// RequireAll ensures the current principal has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.gate(normalized, func(p *Principal) Decision {
		for _, perm := range normalized {
			if d := m.Check(p, perm); !d.Allowed {
				return d
			}
		}
		return allow()
	})
}

// gate answers 403 unless decide allows. An empty permission list grants
// nothing, so such routes still need a principal and then deny.
func (m Middleware) gate(required []string, decide func(*Principal) Decision) func(http.Handler) http.Handler {
	if len(required) == 0 {
		decide = func(p *Principal) Decision { return m.Check(p, "") }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			d := decide(p)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				attrs := []any{slog.String("path", r.URL.Path), slog.Any("required", required), slog.String("reason", d.Reason)}
				if p != nil {
					attrs = append(attrs, slog.Int64("principal", p.ID), slog.String("role", string(p.Role)))
				}
				m.Logger.Warn("rbac denied", attrs...)
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", d.Reason)
		})
	}
}
