package middleware

import (
	"vocab-updated/cmd/api/auth"
	"vocab-updated/config"

	"github.com/gin-gonic/gin"
)

// ServiceAuthMiddleware protects the aggregation endpoints with a bearer
// token. A request passes when its token matches the static service token,
// or when it is a valid JWT signed with the shared secret. The JWT manager
// may be nil when only the static token is configured.
func ServiceAuthMiddleware(jwtManager *auth.JWTManager, serviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		if auth.TokenEquals(token, serviceToken) {
			c.Set("subject", "service")
			c.Set("role", auth.RoleService)
			c.Next()
			return
		}

		if jwtManager == nil {
			auth.AbortWithUnauthorized(c, auth.ErrInvalidFormat)
			return
		}

		subject, role, err := jwtManager.Parse(token)
		if err != nil {
			config.Logger.Warnf("token parse error: %v", err)
			auth.AbortWithUnauthorized(c, err)
			return
		}

		c.Set("subject", subject)
		c.Set("role", role)
		c.Next()
	}
}
