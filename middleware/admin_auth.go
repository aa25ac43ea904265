package middleware

import (
	"net/http"
	"os"
	"strings"

	"freshscan/utils"
)

// AdminAuthEnabled reports whether an admin credential is configured. When it
// is not, the admin surface stays open; the reference deployment is a
// LAN-only tool with an unauthenticated admin page.
func AdminAuthEnabled() bool {
	return os.Getenv("ADMIN_PASSWORD_HASH") != "" || os.Getenv("ADMIN_PASSWORD") != ""
}

// AdminAuthMiddleware verifies that the request carries a valid admin token.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !AdminAuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: no token provided",
			})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: invalid token",
			})
			return
		}
		if role, ok := claims["role"].(string); !ok || role != "admin" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
