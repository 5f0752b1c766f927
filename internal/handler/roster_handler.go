package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raptorhall/tutoring-api/internal/models"
	"github.com/raptorhall/tutoring-api/pkg/response"
)

type rosterService interface {
	DailyRoster(ctx context.Context, rawDate string) ([]models.BookingDetail, error)
	Export(ctx context.Context, rawDate, format string) ([]byte, string, string, error)
}

// RosterHandler exposes the daily roster and its exports.
type RosterHandler struct {
	roster rosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster rosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// Daily godoc
// @Summary Daily tutoring roster
// @Tags Roster
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /roster/{date} [get]
func (h *RosterHandler) Daily(c *gin.Context) {
	roster, err := h.roster.DailyRoster(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Export godoc
// @Summary Export the daily roster
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /roster/{date}/export [get]
func (h *RosterHandler) Export(c *gin.Context) {
	content, contentType, filename, err := h.roster.Export(c.Request.Context(), c.Param("date"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}
