package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly ensures the credential role is admin. It must run after RequireAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentRole(c) != RoleAdmin {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
			return
		}
		c.Next()
	}
}
