package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/raptorhall/tutoring-api/internal/service"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
	"github.com/raptorhall/tutoring-api/pkg/response"
)

// ContextSponsorKey is the gin context key storing sponsor JWT claims.
const ContextSponsorKey = "currentSponsor"

// JWT protects routes by requiring a valid sponsor access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
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

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSponsorKey, claims)
		c.Next()
	}
}
