package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
)

type rosterReaderStub struct {
	bookings []models.BookingDetail
	err      error
	calls    int
}

func (s *rosterReaderStub) ListActiveByDate(ctx context.Context, date time.Time) ([]models.BookingDetail, error) {
	s.calls++
	return s.bookings, s.err
}

func rosterFixture() []models.BookingDetail {
	return []models.BookingDetail{
		{
			Booking: models.Booking{
				ID:          "booking-1",
				LearnerID:   "learner-1",
				SponsorID:   "sponsor-1",
				LunchA:      true,
				LunchC:      true,
				Status:      models.BookingStatusActive,
				HadPriority: true,
			},
			SponsorName:    "Ada Hartley",
			SponsorSubject: models.SubjectCS,
			LearnerName:    "Milo Freeman",
		},
		{
			Booking: models.Booking{
				ID:        "booking-2",
				LearnerID: "learner-2",
				SponsorID: "sponsor-2",
				LunchB:    true,
				Status:    models.BookingStatusActive,
			},
			SponsorName:    "Rosa Whitfield",
			SponsorSubject: models.SubjectScience,
			LearnerName:    "June Park",
		},
	}
}

func TestDailyRoster(t *testing.T) {
	reader := &rosterReaderStub{bookings: rosterFixture()}
	svc := NewRosterService(reader, nil, nil, nil, time.Minute)

	roster, err := svc.DailyRoster(context.Background(), "2026-09-07")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Milo Freeman", roster[0].LearnerName)
}

func TestDailyRosterRejectsMalformedDate(t *testing.T) {
	svc := NewRosterService(&rosterReaderStub{}, nil, nil, nil, time.Minute)

	_, err := svc.DailyRoster(context.Background(), "next monday")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDailyRosterCacheAside(t *testing.T) {
	reader := &rosterReaderStub{bookings: rosterFixture()}
	cache := newCacheStub()
	svc := NewRosterService(reader, cache, nil, nil, time.Minute)

	_, err := svc.DailyRoster(context.Background(), "2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)
	assert.Contains(t, cache.entries, "tutoring:roster:2026-09-07")

	// Second read is served from the cache without touching the store.
	roster, err := svc.DailyRoster(context.Background(), "2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)
	require.Len(t, roster, 2)
}

func TestRosterExportCSV(t *testing.T) {
	reader := &rosterReaderStub{bookings: rosterFixture()}
	svc := NewRosterService(reader, nil, nil, nil, time.Minute)

	content, contentType, filename, err := svc.Export(context.Background(), "2026-09-07", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "tutoring-roster-2026-09-07.csv", filename)

	csv := string(content)
	assert.Contains(t, csv, "Learner,Sponsor,Subject,Lunches,Had Priority")
	assert.Contains(t, csv, "Milo Freeman,Ada Hartley,CS,\"A,C\",yes")
	assert.Contains(t, csv, "June Park,Rosa Whitfield,Science,B,no")
}

func TestRosterExportPDF(t *testing.T) {
	reader := &rosterReaderStub{bookings: rosterFixture()}
	svc := NewRosterService(reader, nil, nil, nil, time.Minute)

	content, contentType, filename, err := svc.Export(context.Background(), "2026-09-07", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "tutoring-roster-2026-09-07.pdf", filename)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestRosterExportUnknownFormat(t *testing.T) {
	svc := NewRosterService(&rosterReaderStub{}, nil, nil, nil, time.Minute)

	_, _, _, err := svc.Export(context.Background(), "2026-09-07", "xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
