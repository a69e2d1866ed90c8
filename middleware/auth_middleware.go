package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"mediafolder/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userId"
	ContextRole   = "role"
)

func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, "Authorization token required")
			c.Abort()
			return
		}

		claims, err := utils.VerifyJWTToken(token, jwtSecret, issuer)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims.UserID == "" {
			utils.UnauthorizedResponse(c, "Invalid user ID in token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}

// RequireRole lets the request through when the authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.UnauthorizedResponse(c, "User role not found")
			c.Abort()
			return
		}

		userRole, ok := role.(string)
		if !ok || !slices.Contains(roles, userRole) {
			utils.ForbiddenResponse(c, "Insufficient privileges")
			c.Abort()
			return
		}

		c.Next()
	}
}
