package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/doctrack-api/internal/models"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
	"github.com/noah-isme/doctrack-api/pkg/logger"
	"github.com/noah-isme/doctrack-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(logger.ActorKey, claims.UserID)
		c.Next()
	}
}

// ActorID returns the authenticated user id or an empty string.
func ActorID(c *gin.Context) string {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return ""
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims == nil {
		return ""
	}
	return claims.UserID
}
