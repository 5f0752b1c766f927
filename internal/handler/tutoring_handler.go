package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raptorhall/tutoring-api/internal/dto"
	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
	"github.com/raptorhall/tutoring-api/pkg/response"
)

type tutoringService interface {
	Submit(ctx context.Context, sponsorID string, req dto.SubmitBookingRequest) (*models.BookingDetail, error)
	Cancel(ctx context.Context, sponsorID, bookingID string) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.BookingDetail, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, *models.Pagination, error)
	Classify(ctx context.Context, rawDate string) (*dto.PriorityInfo, error)
}

// TutoringHandler exposes the booking engine endpoints.
type TutoringHandler struct {
	tutoring tutoringService
}

// NewTutoringHandler constructs TutoringHandler.
func NewTutoringHandler(tutoring tutoringService) *TutoringHandler {
	return &TutoringHandler{tutoring: tutoring}
}

// List godoc
// @Summary List tutoring bookings
// @Tags Tutoring
// @Produce json
// @Param learnerId query string false "Filter by learner"
// @Param sponsorId query string false "Filter by sponsor"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tutoring [get]
func (h *TutoringHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	filter.LearnerID = c.Query("learnerId")
	filter.SponsorID = c.Query("sponsorId")
	filter.Status = models.BookingStatus(c.Query("status"))
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date filter"))
			return
		}
		filter.Date = &date
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	bookings, pagination, err := h.tutoring.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get a booking
// @Tags Tutoring
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /tutoring/{id} [get]
func (h *TutoringHandler) Get(c *gin.Context) {
	booking, err := h.tutoring.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Submit godoc
// @Summary Submit a booking request
// @Description Claims a learner for the authenticated sponsor on a date.
// @Description Returns 409 OVERRIDE_REQUIRED when a lower-priority sponsor
// @Description holds the slot; resubmit with override=true to revoke it.
// @Tags Tutoring
// @Accept json
// @Produce json
// @Param payload body dto.SubmitBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /tutoring [post]
func (h *TutoringHandler) Submit(c *gin.Context) {
	claims := currentSponsor(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	booking, err := h.tutoring.Submit(c.Request.Context(), claims.SponsorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Tutoring
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /tutoring/cancel/{id} [put]
func (h *TutoringHandler) Cancel(c *gin.Context) {
	claims := currentSponsor(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	booking, err := h.tutoring.Cancel(c.Request.Context(), claims.SponsorID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Priority godoc
// @Summary Explain the priority rule for a date
// @Tags Tutoring
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /tutoring/priority/{date} [get]
func (h *TutoringHandler) Priority(c *gin.Context) {
	info, err := h.tutoring.Classify(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}
