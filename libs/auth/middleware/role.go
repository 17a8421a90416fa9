package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/mentornest/backend/libs/auth/service"
)

// RoleMiddleware validates the JWT access token and asks the policy enforcer
// whether the token's role may call the request path with the request method
func RoleMiddleware(tokenGenerator *service.TokenGenerator, enforcer *casbin.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := authenticate(w, r, tokenGenerator)
			if !ok {
				return
			}

			role, _ := GetRole(ctx)
			allowed, err := enforcer.Enforce(role, r.URL.Path, r.Method)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "authorization check failed")
				return
			}
			if !allowed {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
