package identity

import (
	"net/http"
	"strings"
)

// Headers written by the fronting auth collaborator after it has validated
// the bearer token. Requests without them are treated as anonymous.
const (
	HeaderUser   = "X-Auth-User"
	HeaderUserID = "X-Auth-User-Id"
	HeaderTenant = "X-Tenant-Id"
)

// Extractor builds the request actor from forwarded auth headers.
func Extractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := Actor{
			Username: strings.TrimSpace(r.Header.Get(HeaderUser)),
			UserID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
			TenantID: strings.TrimSpace(r.Header.Get(HeaderTenant)),
		}
		actor.Authenticated = actor.Username != ""
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}
