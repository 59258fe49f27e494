package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/response"
)

// RequireStaffRole checks that the staff JWT carries one of the allowed roles.
func RequireStaffRole(roles ...model.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}
