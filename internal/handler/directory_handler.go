package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/raptorhall/tutoring-api/internal/models"
	"github.com/raptorhall/tutoring-api/pkg/response"
)

type directoryService interface {
	ListSponsors(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, *models.Pagination, error)
	GetSponsor(ctx context.Context, id string) (*models.Sponsor, error)
	ListLearners(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, *models.Pagination, error)
	GetLearner(ctx context.Context, id string) (*models.Learner, error)
}

type learnerBookingsService interface {
	ActiveBookingsFor(ctx context.Context, learnerID string) ([]models.BookingDetail, error)
}

// DirectoryHandler exposes read-only sponsor and learner listings.
type DirectoryHandler struct {
	directory directoryService
	bookings  learnerBookingsService
}

// NewDirectoryHandler constructs DirectoryHandler.
func NewDirectoryHandler(directory directoryService, bookings learnerBookingsService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, bookings: bookings}
}

// ListSponsors godoc
// @Summary List sponsors
// @Tags Directory
// @Produce json
// @Param subject query string false "Filter by subject"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sponsors [get]
func (h *DirectoryHandler) ListSponsors(c *gin.Context) {
	var filter models.SponsorFilter
	filter.Subject = models.Subject(c.Query("subject"))
	filter.Search = c.Query("search")
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	sponsors, pagination, err := h.directory.ListSponsors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsors, pagination)
}

// GetSponsor godoc
// @Summary Get sponsor
// @Tags Directory
// @Produce json
// @Param id path string true "Sponsor ID"
// @Success 200 {object} response.Envelope
// @Router /sponsors/{id} [get]
func (h *DirectoryHandler) GetSponsor(c *gin.Context) {
	sponsor, err := h.directory.GetSponsor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// ListLearners godoc
// @Summary List learners
// @Tags Directory
// @Produce json
// @Param search query string false "Search by name"
// @Param grade query int false "Filter by grade level"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /learners [get]
func (h *DirectoryHandler) ListLearners(c *gin.Context) {
	var filter models.LearnerFilter
	filter.Search = c.Query("search")
	if grade, err := strconv.Atoi(c.Query("grade")); err == nil {
		filter.Grade = grade
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	learners, pagination, err := h.directory.ListLearners(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, learners, pagination)
}

// GetLearner godoc
// @Summary Get learner
// @Tags Directory
// @Produce json
// @Param id path string true "Learner ID"
// @Success 200 {object} response.Envelope
// @Router /learners/{id} [get]
func (h *DirectoryHandler) GetLearner(c *gin.Context) {
	learner, err := h.directory.GetLearner(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, learner, nil)
}

// LearnerBookings godoc
// @Summary List a learner's active bookings
// @Tags Directory
// @Produce json
// @Param id path string true "Learner ID"
// @Success 200 {object} response.Envelope
// @Router /learners/{id}/bookings [get]
func (h *DirectoryHandler) LearnerBookings(c *gin.Context) {
	bookings, err := h.bookings.ActiveBookingsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}
