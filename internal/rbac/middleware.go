package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talenttrack/talenttrack/internal/identity"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// ReasonHeader carries the rejection diagnostic. The response body stays
// empty; net/http offers no way to customize the reason phrase itself.
const ReasonHeader = "X-Rbac-Reason"

// Middleware authorizes every inbound request against the permission
// registry before it reaches business handlers.
type Middleware struct {
	Service *Service
	Users   UserDirectory
	Logger  *slog.Logger
	// Match decides path/pattern matching; defaults to MatchLoose.
	Match MatchFunc
	// Denials, when set, counts rejected requests.
	Denials interface{ AuthzDenied() }
}

// Authorize wraps next with request-level permission enforcement.
//
// Anonymous requests pass through untouched; their authorization is left
// to endpoint-level rules. Authenticated requests are rejected with 401
// unless a granted permission matches the request method and path, the
// actor is a SuperUser, or no roles exist system-wide yet (fail-open: an
// empty role table means RBAC is not enforced, not deny-all).
func (m Middleware) Authorize(next http.Handler) http.Handler {
	match := m.Match
	if match == nil {
		match = MatchLoose
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := identity.ActorFromContext(r.Context())
		if !actor.Authenticated {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		path := strings.ToLower(r.URL.Path)

		user, err := m.Users.ByUsername(ctx, actor.Username)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				m.reject(w, path, actor.Username)
				return
			}
			m.fail(w, "lookup user", err)
			return
		}

		hasRoles, err := m.Service.HasAnyRoles(ctx)
		if err != nil {
			m.fail(w, "list roles", err)
			return
		}
		if !hasRoles {
			next.ServeHTTP(w, r)
			return
		}

		super, err := m.Service.IsSuperUser(ctx, user.ID)
		if err != nil {
			m.fail(w, "resolve superuser", err)
			return
		}
		if super {
			next.ServeHTTP(w, r)
			return
		}

		granted, err := m.Service.PermissionsForUser(ctx, user.ID)
		if err != nil {
			m.fail(w, "resolve permissions", err)
			return
		}
		for _, perm := range granted {
			if perm.Method != r.Method {
				continue
			}
			if match(path, strings.ToLower(perm.Endpoint)) {
				next.ServeHTTP(w, r)
				return
			}
		}

		m.reject(w, path, actor.Username)
	})
}

func (m Middleware) reject(w http.ResponseWriter, path, username string) {
	if m.Logger != nil {
		m.Logger.Warn("rbac rejection", slog.String("user", username), slog.String("path", path))
	}
	if m.Denials != nil {
		m.Denials.AuthzDenied()
	}
	w.Header().Set(ReasonHeader, "RBAC error: user unauthorized to access "+path)
	w.WriteHeader(http.StatusUnauthorized)
}

func (m Middleware) fail(w http.ResponseWriter, op string, err error) {
	if m.Logger != nil {
		m.Logger.Error("rbac "+op, slog.Any("error", err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
