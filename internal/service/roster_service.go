package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
	"github.com/raptorhall/tutoring-api/pkg/export"
)

type rosterBookingReader interface {
	ListActiveByDate(ctx context.Context, date time.Time) ([]models.BookingDetail, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheRecorder interface {
	RecordCacheOperation(hit bool)
}

// RosterService renders the day's active bookings for front-office staff:
// who pulled which learner, from which lunch blocks.
type RosterService struct {
	bookings rosterBookingReader
	cache    rosterCache
	metrics  cacheRecorder
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewRosterService constructs RosterService. cache and metrics may be nil.
func NewRosterService(bookings rosterBookingReader, cache rosterCache, metrics cacheRecorder, logger *zap.Logger, cacheTTL time.Duration) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{bookings: bookings, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// DailyRoster returns the active bookings for a date, cache-aside.
func (s *RosterService) DailyRoster(ctx context.Context, rawDate string) ([]models.BookingDetail, error) {
	if _, err := time.Parse("2006-01-02", rawDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	cacheKey := "tutoring:roster:" + rawDate
	if s.cache != nil {
		var cached []models.BookingDetail
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCache(true)
			return cached, nil
		}
		s.recordCache(false)
	}

	date, _ := time.Parse("2006-01-02", rawDate)
	bookings, err := s.bookings.ListActiveByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, bookings, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache roster", zap.String("date", rawDate), zap.Error(err))
		}
	}
	return bookings, nil
}

// Export renders the daily roster in the requested format (csv or pdf).
// Returns content, content type and a suggested filename.
func (s *RosterService) Export(ctx context.Context, rawDate, format string) ([]byte, string, string, error) {
	bookings, err := s.DailyRoster(ctx, rawDate)
	if err != nil {
		return nil, "", "", err
	}

	table := rosterTable(rawDate, bookings)

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := export.CSV(table)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return content, "text/csv", fmt.Sprintf("tutoring-roster-%s.csv", rawDate), nil
	case "pdf":
		content, err := export.PDF(table)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return content, "application/pdf", fmt.Sprintf("tutoring-roster-%s.pdf", rawDate), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *RosterService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func rosterTable(rawDate string, bookings []models.BookingDetail) export.Table {
	table := export.Table{
		Title:   "Tutoring Roster " + rawDate,
		Headers: []string{"Learner", "Sponsor", "Subject", "Lunches", "Had Priority"},
	}
	for _, b := range bookings {
		periods := b.Lunches().Periods()
		labels := make([]string, len(periods))
		for i, p := range periods {
			labels[i] = string(p)
		}
		hadPriority := "no"
		if b.HadPriority {
			hadPriority = "yes"
		}
		table.Rows = append(table.Rows, []string{
			b.LearnerName,
			b.SponsorName,
			string(b.SponsorSubject),
			strings.Join(labels, ","),
			hadPriority,
		})
	}
	return table
}
