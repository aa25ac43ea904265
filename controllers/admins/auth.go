package admins

import (
	"crypto/subtle"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"freshscan/middleware"
	"freshscan/utils"
)

const adminTokenTTL = 12 * time.Hour

// POST /v1/admin/login
// Exchanges the configured admin password for a bearer token. Prefer
// ADMIN_PASSWORD_HASH (bcrypt); ADMIN_PASSWORD is supported for local use.
func (c *AdminController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !middleware.AdminAuthEnabled() {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "Admin authentication is not configured",
		})
		return
	}

	var req struct {
		Password string `json:"password" validate:"required"`
	}
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if !checkAdminPassword(req.Password) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid password",
		})
		return
	}

	token, err := utils.GenerateAdminToken(adminTokenTTL)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to issue token"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"token":      token,
			"expires_in": int(adminTokenTTL.Seconds()),
		},
	})
}

func checkAdminPassword(candidate string) bool {
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
	}
	if plain := os.Getenv("ADMIN_PASSWORD"); plain != "" {
		return subtle.ConstantTimeCompare([]byte(plain), []byte(candidate)) == 1
	}
	return false
}
