package identity

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-grosir/internal/common"
)

// Header names populated by the authentication gateway in front of this API.
const (
	HeaderCompanyID = "X-Company-ID"
	HeaderUserID    = "X-User-ID"
)

// Middleware lifts the gateway-resolved identity headers onto the request
// context. It never rejects: endpoints that require a company enforce that
// themselves so the error surfaces with the right taxonomy (403 FORBIDDEN).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := common.Identity{
			CompanyID: strings.TrimSpace(r.Header.Get(HeaderCompanyID)),
			UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
		}
		if id.CompanyID != "" || id.UserID != "" {
			r = r.WithContext(common.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests whose identity lacks an acting user. Admin
// surfaces use it; the gateway only forwards these routes to staff.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := common.UserID(r.Context()); !ok {
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
