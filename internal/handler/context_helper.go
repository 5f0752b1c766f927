package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raptorhall/tutoring-api/internal/middleware"
	"github.com/raptorhall/tutoring-api/internal/models"
)

// currentSponsor extracts the authenticated sponsor claims from context.
func currentSponsor(c *gin.Context) *models.SponsorClaims {
	v, exists := c.Get(middleware.ContextSponsorKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*models.SponsorClaims)
	if !ok {
		return nil
	}
	return claims
}
