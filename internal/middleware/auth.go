package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"investment-service/internal/auth"
	"investment-service/internal/config"
	"investment-service/internal/services"
	"investment-service/pkg/common"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// AuthRequired validates the bearer JWT and sets user_id and role in context.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing authorization header", nil, http.StatusUnauthorized))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid authorization format", nil, http.StatusUnauthorized))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token", nil, http.StatusUnauthorized))
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole checks that the authenticated user has one of the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("unauthorized", nil, http.StatusUnauthorized))
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("forbidden", nil, http.StatusForbidden))
	}
}

// GetActor returns the caller set by AuthRequired. Must be used after it.
func GetActor(c *gin.Context) services.Actor {
	var id uint
	if v, ok := c.Get(ctxUserID); ok {
		id, _ = v.(uint)
	}
	return services.Actor{UserID: id, Role: c.GetString(ctxRole)}
}
