package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admitra/portal-backend/internal/response"
	"github.com/admitra/portal-backend/internal/service"
)

// CheckSingleDeviceSession validates the JWT's JTI against the active session in Redis.
// If the JTI doesn't match, the request is rejected (a newer login or a staff
// reset replaced the session).
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		// Only enforce for applicant tokens.
		if claims.TokenType != service.TokenTypeApplicant {
			c.Next()
			return
		}

		if err := authService.ValidateApplicantSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
