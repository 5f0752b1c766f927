package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorhall/tutoring-api/internal/dto"
	internalmiddleware "github.com/raptorhall/tutoring-api/internal/middleware"
	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
)

type tutoringServiceMock struct {
	submitDetail *models.BookingDetail
	submitErr    error
	submittedBy  string
	submittedReq dto.SubmitBookingRequest

	cancelBooking *models.Booking
	cancelErr     error

	getDetail *models.BookingDetail
	getErr    error

	listDetails []models.BookingDetail
	listFilter  models.BookingFilter

	priorityInfo *dto.PriorityInfo
	priorityErr  error
}

func (m *tutoringServiceMock) Submit(ctx context.Context, sponsorID string, req dto.SubmitBookingRequest) (*models.BookingDetail, error) {
	m.submittedBy = sponsorID
	m.submittedReq = req
	return m.submitDetail, m.submitErr
}

func (m *tutoringServiceMock) Cancel(ctx context.Context, sponsorID, bookingID string) (*models.Booking, error) {
	return m.cancelBooking, m.cancelErr
}

func (m *tutoringServiceMock) Get(ctx context.Context, id string) (*models.BookingDetail, error) {
	return m.getDetail, m.getErr
}

func (m *tutoringServiceMock) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, *models.Pagination, error) {
	m.listFilter = filter
	return m.listDetails, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listDetails)}, nil
}

func (m *tutoringServiceMock) Classify(ctx context.Context, rawDate string) (*dto.PriorityInfo, error) {
	return m.priorityInfo, m.priorityErr
}

func buildTutoringRouter(mock *tutoringServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-Sponsor"); id != "" {
			c.Set(internalmiddleware.ContextSponsorKey, &models.SponsorClaims{
				SponsorID: id,
				FullName:  "Ada Hartley",
				Subject:   models.SubjectCS,
			})
		}
		c.Next()
	})

	h := NewTutoringHandler(mock)
	router.GET("/tutoring", h.List)
	router.GET("/tutoring/priority/:date", h.Priority)
	router.GET("/tutoring/:id", h.Get)
	router.POST("/tutoring", h.Submit)
	router.PUT("/tutoring/cancel/:id", h.Cancel)
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func sampleDetail() *models.BookingDetail {
	return &models.BookingDetail{
		Booking: models.Booking{
			ID:          "booking-1",
			LearnerID:   "learner-1",
			SponsorID:   "sponsor-1",
			LunchA:      true,
			Status:      models.BookingStatusActive,
			HadPriority: true,
		},
		SponsorName:    "Ada Hartley",
		SponsorSubject: models.SubjectCS,
		LearnerName:    "Milo Freeman",
	}
}

func TestTutoringSubmit(t *testing.T) {
	mock := &tutoringServiceMock{submitDetail: sampleDetail()}
	router := buildTutoringRouter(mock)

	payload := `{"learner_id":"learner-1","date":"2026-09-07","lunches":{"a":true},"override":false}`
	req, _ := http.NewRequest(http.MethodPost, "/tutoring", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Sponsor", "sponsor-1")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "sponsor-1", mock.submittedBy)
	assert.Equal(t, "learner-1", mock.submittedReq.LearnerID)
	assert.True(t, mock.submittedReq.Lunches.A)
	assert.Contains(t, resp.Body.String(), `"had_priority":true`)
}

func TestTutoringSubmitUnauthenticated(t *testing.T) {
	router := buildTutoringRouter(&tutoringServiceMock{})

	payload := `{"learner_id":"learner-1","date":"2026-09-07"}`
	req, _ := http.NewRequest(http.MethodPost, "/tutoring", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestTutoringSubmitMalformedBody(t *testing.T) {
	router := buildTutoringRouter(&tutoringServiceMock{})

	req, _ := http.NewRequest(http.MethodPost, "/tutoring", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Sponsor", "sponsor-1")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), appErrors.ErrValidation.Code)
}

func TestTutoringSubmitOverrideRequired(t *testing.T) {
	mock := &tutoringServiceMock{
		submitErr: appErrors.WithDetails(appErrors.ErrOverrideRequired, map[string]interface{}{
			"reason":       "CS has priority on Monday",
			"can_override": true,
			"conflict": dto.ConflictInfo{
				ExistingBookingID: "booking-held",
				ExistingSponsor:   "Rosa Whitfield",
				ExistingSubject:   models.SubjectScience,
				CanOverride:       true,
				Reason:            "CS has priority on Monday",
			},
		}),
	}
	router := buildTutoringRouter(mock)

	payload := `{"learner_id":"learner-1","date":"2026-09-07","lunches":{"a":true}}`
	req, _ := http.NewRequest(http.MethodPost, "/tutoring", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Sponsor", "sponsor-1")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusConflict, resp.Code)

	var envelope struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "OVERRIDE_REQUIRED", envelope.Error.Code)
	assert.Equal(t, true, envelope.Error.Details["can_override"])
}

func TestTutoringSubmitDenied(t *testing.T) {
	mock := &tutoringServiceMock{
		submitErr: appErrors.Clone(appErrors.ErrSlotDenied, "Math has priority on Tuesdays"),
	}
	router := buildTutoringRouter(mock)

	payload := `{"learner_id":"learner-1","date":"2026-09-08","lunches":{"a":true}}`
	req, _ := http.NewRequest(http.MethodPost, "/tutoring", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Sponsor", "sponsor-1")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Math has priority on Tuesdays")
}

func TestTutoringCancel(t *testing.T) {
	mock := &tutoringServiceMock{
		cancelBooking: &models.Booking{ID: "booking-1", Status: models.BookingStatusCancelled},
	}
	router := buildTutoringRouter(mock)

	req, _ := http.NewRequest(http.MethodPut, "/tutoring/cancel/booking-1", nil)
	req.Header.Set("X-Test-Sponsor", "sponsor-1")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"cancelled"`)
}

func TestTutoringCancelNotOwner(t *testing.T) {
	mock := &tutoringServiceMock{cancelErr: appErrors.Clone(appErrors.ErrNotOwner, "")}
	router := buildTutoringRouter(mock)

	req, _ := http.NewRequest(http.MethodPut, "/tutoring/cancel/booking-1", nil)
	req.Header.Set("X-Test-Sponsor", "sponsor-2")

	resp := performRequest(router, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), appErrors.ErrNotOwner.Code)
}

func TestTutoringList(t *testing.T) {
	mock := &tutoringServiceMock{listDetails: []models.BookingDetail{*sampleDetail()}}
	router := buildTutoringRouter(mock)

	req, _ := http.NewRequest(http.MethodGet, "/tutoring?learnerId=learner-1&status=active&date=2026-09-07&page=2&limit=10", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "learner-1", mock.listFilter.LearnerID)
	assert.Equal(t, models.BookingStatusActive, mock.listFilter.Status)
	require.NotNil(t, mock.listFilter.Date)
	assert.Equal(t, 2, mock.listFilter.Page)
	assert.Equal(t, 10, mock.listFilter.PageSize)
	assert.Contains(t, resp.Body.String(), `"pagination"`)
}

func TestTutoringListBadDateFilter(t *testing.T) {
	router := buildTutoringRouter(&tutoringServiceMock{})

	req, _ := http.NewRequest(http.MethodGet, "/tutoring?date=yesterday", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTutoringPriority(t *testing.T) {
	subject := models.SubjectMath
	mock := &tutoringServiceMock{priorityInfo: &dto.PriorityInfo{
		Date:            "2026-09-08",
		DayName:         "Tuesday",
		PrioritySubject: &subject,
		Message:         "Math has priority on Tuesdays",
	}}
	router := buildTutoringRouter(mock)

	req, _ := http.NewRequest(http.MethodGet, "/tutoring/priority/2026-09-08", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Math has priority on Tuesdays")
}

func TestTutoringGetNotFound(t *testing.T) {
	mock := &tutoringServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "booking not found")}
	router := buildTutoringRouter(mock)

	req, _ := http.NewRequest(http.MethodGet, "/tutoring/booking-404", nil)
	resp := performRequest(router, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
