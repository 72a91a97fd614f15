package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventpass/internal/helpers"
)

const (
	SessionCookie = "admin_session"

	adminUsernameKey = "admin_username"
)

// JWTAuthMiddleware admits requests carrying a valid admin session, either in the
// session cookie or as a Bearer token.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := GetServices(c)
		if svc == nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Services not configured.")
			c.Abort()
			return
		}

		token := sessionToken(c)
		if token == "" {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		claims, err := svc.Auth.ParseToken(token)
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired session.")
			c.Abort()
			return
		}

		c.Set(adminUsernameKey, claims.Subject)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func AdminUsername(c *gin.Context) string {
	return c.GetString(adminUsernameKey)
}
