package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/raptorhall/tutoring-api/internal/calendar"
	"github.com/raptorhall/tutoring-api/internal/dto"
	"github.com/raptorhall/tutoring-api/internal/models"
	"github.com/raptorhall/tutoring-api/internal/resolver"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
)

type bookingStore interface {
	FindActiveDetail(ctx context.Context, learnerID string, date time.Time) (*models.BookingDetail, error)
	CreateActive(ctx context.Context, booking *models.Booking) error
	OverrideCreate(ctx context.Context, existingID string, replacement *models.Booking, reason string) error
	Cancel(ctx context.Context, bookingID, sponsorID string) (*models.Booking, error)
	FindDetailByID(ctx context.Context, id string) (*models.BookingDetail, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error)
	ListActiveByLearner(ctx context.Context, learnerID string) ([]models.BookingDetail, error)
}

type sponsorReader interface {
	FindByID(ctx context.Context, id string) (*models.Sponsor, error)
}

type learnerReader interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
}

type priorityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type decisionRecorder interface {
	ObserveDecision(outcome string)
	RecordCacheOperation(hit bool)
}

// Decision outcome labels exported to metrics.
const (
	DecisionAccepted         = "accepted"
	DecisionDenied           = "denied"
	DecisionOverrideRequired = "override_required"
	DecisionOverridden       = "overridden"
	DecisionConflict         = "conflict"
)

// AssignmentService runs the submit/override/cancel protocol: classify the
// date, read the current holder, let the resolver decide, then apply the
// decision through the store's atomic writes. All side effects are confined
// to the booking store.
type AssignmentService struct {
	store     bookingStore
	sponsors  sponsorReader
	learners  learnerReader
	rule      *calendar.Rule
	resolver  *resolver.Resolver
	cache     priorityCache
	metrics   decisionRecorder
	validator *validator.Validate
	logger    *zap.Logger

	priorityTTL time.Duration
}

// NewAssignmentService constructs the AssignmentService. cache and metrics
// may be nil.
func NewAssignmentService(store bookingStore, sponsors sponsorReader, learners learnerReader, rule *calendar.Rule, res *resolver.Resolver, cache priorityCache, metrics decisionRecorder, validate *validator.Validate, logger *zap.Logger, priorityTTL time.Duration) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		store:       store,
		sponsors:    sponsors,
		learners:    learners,
		rule:        rule,
		resolver:    res,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		priorityTTL: priorityTTL,
	}
}

// Submit applies the booking protocol for the requesting sponsor. On a
// detected race (slot taken or override gone stale between read and write)
// it re-reads and re-decides exactly once; a second collision surfaces to
// the caller as a genuine conflict.
func (s *AssignmentService) Submit(ctx context.Context, sponsorID string, req dto.SubmitBookingRequest) (*models.BookingDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	day := s.rule.Classify(date)
	if day.Blocked {
		return nil, appErrors.WithDetails(appErrors.ErrBlockedDay, map[string]interface{}{
			"date":     req.Date,
			"day_name": day.DayName,
		})
	}

	if !req.Lunches.Any() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one lunch period is required")
	}

	if _, err := s.learners.FindByID(ctx, req.LearnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}

	sponsor, err := s.sponsors.FindByID(ctx, sponsorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sponsor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sponsor")
	}
	if !sponsor.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	// One bounded retry: a concurrent writer may win between the read and
	// the store's transactional write, in which case the world is re-read
	// and the decision made again against the new holder.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		detail, retry, err := s.attemptSubmit(ctx, sponsor, req, date, day)
		if err == nil {
			return detail, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		s.logger.Info("booking write raced, retrying decision",
			zap.String("learner_id", req.LearnerID),
			zap.String("sponsor_id", sponsor.ID),
			zap.String("date", req.Date),
		)
	}
	s.observe(DecisionConflict)
	return nil, lastErr
}

// attemptSubmit runs one read-decide-write cycle. retry is true only for
// write races that are worth one re-read.
func (s *AssignmentService) attemptSubmit(ctx context.Context, sponsor *models.Sponsor, req dto.SubmitBookingRequest, date time.Time, day calendar.DayClass) (detail *models.BookingDetail, retry bool, err error) {
	existing, err := s.store.FindActiveDetail(ctx, req.LearnerID, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read current booking")
	}

	outcome := s.resolver.Decide(*sponsor, existing, date)

	switch outcome.Kind {
	case resolver.Accept:
		booking := s.newBooking(sponsor.ID, req, date, outcome.HadPriority)
		if err := s.store.CreateActive(ctx, booking); err != nil {
			if errors.Is(err, appErrors.ErrSlotTaken) {
				return nil, true, err
			}
			return nil, false, err
		}
		s.observe(DecisionAccepted)
		s.invalidateRoster(ctx, req.Date)
		return s.loadDetail(ctx, booking.ID)

	case resolver.Deny:
		s.observe(DecisionDenied)
		return nil, false, appErrors.WithDetails(appErrors.Clone(appErrors.ErrSlotDenied, outcome.Reason), conflictDetails(outcome, false))

	case resolver.OverrideRequired:
		if !req.Override {
			s.observe(DecisionOverrideRequired)
			return nil, false, appErrors.WithDetails(appErrors.ErrOverrideRequired, conflictDetails(outcome, true))
		}
		booking := s.newBooking(sponsor.ID, req, date, true)
		reason := fmt.Sprintf("overridden by %s: %s has priority on %s", sponsor.FullName, sponsor.Subject, day.DayName)
		if err := s.store.OverrideCreate(ctx, outcome.HeldBy.ID, booking, reason); err != nil {
			if errors.Is(err, appErrors.ErrStaleOverride) {
				return nil, true, err
			}
			return nil, false, err
		}
		s.observe(DecisionOverridden)
		s.invalidateRoster(ctx, req.Date)
		return s.loadDetail(ctx, booking.ID)

	default:
		return nil, false, appErrors.Clone(appErrors.ErrInternal, "unknown resolver outcome")
	}
}

// Cancel marks a booking cancelled on behalf of its owning sponsor.
func (s *AssignmentService) Cancel(ctx context.Context, sponsorID, bookingID string) (*models.Booking, error) {
	booking, err := s.store.Cancel(ctx, bookingID, sponsorID)
	if err != nil {
		return nil, err
	}
	s.invalidateRoster(ctx, booking.Date.Format("2006-01-02"))
	return booking, nil
}

// Get returns one booking with context.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.BookingDetail, error) {
	detail, err := s.store.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return detail, nil
}

// List returns bookings with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, *models.Pagination, error) {
	bookings, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ActiveBookingsFor returns the learner's active bookings for display.
func (s *AssignmentService) ActiveBookingsFor(ctx context.Context, learnerID string) ([]models.BookingDetail, error) {
	if _, err := s.learners.FindByID(ctx, learnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}
	bookings, err := s.store.ListActiveByLearner(ctx, learnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// Classify explains the calendar rule for a date, so callers can pre-empt
// denials without attempting a write. The result is cached: the table only
// changes with a redeploy.
func (s *AssignmentService) Classify(ctx context.Context, rawDate string) (*dto.PriorityInfo, error) {
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	cacheKey := "tutoring:priority:" + rawDate
	if s.cache != nil {
		var cached dto.PriorityInfo
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCache(true)
			return &cached, nil
		}
		s.recordCache(false)
	}

	day := s.rule.Classify(date)
	info := &dto.PriorityInfo{
		Date:    rawDate,
		DayName: day.DayName,
		Blocked: day.Blocked,
	}
	switch {
	case day.Blocked && day.Weekday == time.Wednesday:
		info.Message = "No tutoring on Wednesdays"
	case day.Blocked:
		info.Message = "No tutoring on weekends"
	default:
		info.PrioritySubject = day.PrioritySubject
		info.Message = fmt.Sprintf("%s has priority on %ss", *day.PrioritySubject, day.DayName)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, info, s.priorityTTL); err != nil {
			s.logger.Warn("failed to cache priority info", zap.Error(err))
		}
	}
	return info, nil
}

func (s *AssignmentService) newBooking(sponsorID string, req dto.SubmitBookingRequest, date time.Time, hadPriority bool) *models.Booking {
	booking := &models.Booking{
		LearnerID:   req.LearnerID,
		SponsorID:   sponsorID,
		Date:        date,
		Status:      models.BookingStatusActive,
		HadPriority: hadPriority,
	}
	booking.SetLunches(req.Lunches)
	return booking
}

func (s *AssignmentService) loadDetail(ctx context.Context, id string) (*models.BookingDetail, bool, error) {
	detail, err := s.store.FindDetailByID(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created booking")
	}
	return detail, false, nil
}

func (s *AssignmentService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveDecision(outcome)
	}
}

func (s *AssignmentService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *AssignmentService) invalidateRoster(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "tutoring:roster:"+date+"*"); err != nil {
		s.logger.Warn("failed to invalidate roster cache", zap.String("date", date), zap.Error(err))
	}
}

func conflictDetails(outcome resolver.Outcome, canOverride bool) map[string]interface{} {
	details := map[string]interface{}{
		"reason":       outcome.Reason,
		"can_override": canOverride,
	}
	if outcome.HeldBy != nil {
		details["conflict"] = dto.ConflictInfo{
			ExistingBookingID: outcome.HeldBy.ID,
			ExistingSponsor:   outcome.HeldBy.SponsorName,
			ExistingSubject:   outcome.HeldBy.SponsorSubject,
			CanOverride:       canOverride,
			Reason:            outcome.Reason,
		}
	}
	return details
}
