package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
)

const bookingDetailColumns = `b.id, b.learner_id, b.sponsor_id, b.date, b.lunch_a, b.lunch_b, b.lunch_c, b.lunch_d,
        b.status, b.had_priority, b.superseded_reason, b.created_at, b.updated_at,
        s.full_name AS sponsor_name, s.subject AS sponsor_subject, l.full_name AS learner_name`

const bookingDetailJoins = `FROM bookings b
JOIN sponsors s ON s.id = b.sponsor_id
JOIN learners l ON l.id = b.learner_id`

// BookingRepository is the durable assignment store. Its transactional
// writes are the only serialization point for a (learner, date) key: the
// active row is locked before any conditional insert, so at most one
// active booking per key survives concurrent submissions. A partial unique
// index on (learner_id, date) WHERE status = 'active' backstops the same
// invariant at the schema level.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindActiveDetail returns the active booking holding the learner on the
// given date, or nil when the slot is free.
func (r *BookingRepository) FindActiveDetail(ctx context.Context, learnerID string, date time.Time) (*models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE b.learner_id = $1 AND b.date = $2 AND b.status = $3`,
		bookingDetailColumns, bookingDetailJoins)
	var detail models.BookingDetail
	err := r.db.GetContext(ctx, &detail, query, learnerID, dateOnly(date), models.BookingStatusActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active booking: %w", err)
	}
	return &detail, nil
}

// CreateActive inserts a new active booking, failing with ErrSlotTaken when
// an active booking already exists for the (learner, date) key at write
// time. The existence check and the insert share one transaction so the
// read cannot go stale between them.
func (r *BookingRepository) CreateActive(ctx context.Context, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existingID string
	const lockQuery = `SELECT id FROM bookings WHERE learner_id = $1 AND date = $2 AND status = $3 FOR UPDATE`
	err = tx.GetContext(ctx, &existingID, lockQuery, booking.LearnerID, dateOnly(booking.Date), models.BookingStatusActive)
	if err == nil {
		err = appErrors.WithDetails(appErrors.ErrSlotTaken, map[string]interface{}{
			"existing_booking_id": existingID,
		})
		return err
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check active booking: %w", err)
	}

	if err = insertBooking(ctx, tx, booking); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// OverrideCreate atomically cancels the booking identified by existingID
// and inserts the replacement as active for the same key. When existingID
// is no longer the active booking for the key the transaction aborts with
// ErrStaleOverride and the caller must re-read and re-decide.
func (r *BookingRepository) OverrideCreate(ctx context.Context, existingID string, replacement *models.Booking, reason string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin override transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string
	const lockQuery = `SELECT id FROM bookings
        WHERE id = $1 AND learner_id = $2 AND date = $3 AND status = $4 FOR UPDATE`
	err = tx.GetContext(ctx, &lockedID, lockQuery, existingID, replacement.LearnerID, dateOnly(replacement.Date), models.BookingStatusActive)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrStaleOverride, "")
			return err
		}
		return fmt.Errorf("lock booking for override: %w", err)
	}

	const cancelQuery = `UPDATE bookings SET status = $2, superseded_reason = $3, updated_at = $4 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, cancelQuery, existingID, models.BookingStatusCancelled, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("cancel superseded booking: %w", err)
	}

	if err = insertBooking(ctx, tx, replacement); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit override: %w", err)
	}
	return nil
}

// Cancel marks a booking cancelled on behalf of its owning sponsor.
// Cancelling an already-cancelled booking succeeds and returns the row
// unchanged, so transport-layer retries are safe.
func (r *BookingRepository) Cancel(ctx context.Context, bookingID, sponsorID string) (result *models.Booking, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var booking models.Booking
	const lockQuery = `SELECT id, learner_id, sponsor_id, date, lunch_a, lunch_b, lunch_c, lunch_d,
        status, had_priority, superseded_reason, created_at, updated_at
        FROM bookings WHERE id = $1 FOR UPDATE`
	err = tx.GetContext(ctx, &booking, lockQuery, bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "booking not found")
			return nil, err
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}

	if booking.SponsorID != sponsorID {
		err = appErrors.Clone(appErrors.ErrNotOwner, "")
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled {
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit cancel: %w", err)
		}
		return &booking, nil
	}

	now := time.Now().UTC()
	const cancelQuery = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, cancelQuery, bookingID, models.BookingStatusCancelled, now); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = now
	return &booking, nil
}

// FindDetailByID returns a booking with sponsor and learner context.
func (r *BookingRepository) FindDetailByID(ctx context.Context, id string) (*models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE b.id = $1`, bookingDetailColumns, bookingDetailJoins)
	var detail models.BookingDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns bookings matching the filter with a total count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.LearnerID != "" {
		conditions = append(conditions, fmt.Sprintf("b.learner_id = $%d", len(args)+1))
		args = append(args, filter.LearnerID)
	}
	if filter.SponsorID != "" {
		conditions = append(conditions, fmt.Sprintf("b.sponsor_id = $%d", len(args)+1))
		args = append(args, filter.SponsorID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("b.date = $%d", len(args)+1))
		args = append(args, dateOnly(*filter.Date))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY b.date DESC, b.created_at DESC LIMIT %d OFFSET %d`,
		bookingDetailColumns, bookingDetailJoins, clause, size, offset)

	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", bookingDetailJoins, clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// ListActiveByLearner returns the learner's active bookings ordered by date.
func (r *BookingRepository) ListActiveByLearner(ctx context.Context, learnerID string) ([]models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE b.learner_id = $1 AND b.status = $2 ORDER BY b.date ASC`,
		bookingDetailColumns, bookingDetailJoins)
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, learnerID, models.BookingStatusActive); err != nil {
		return nil, fmt.Errorf("list learner bookings: %w", err)
	}
	return bookings, nil
}

// ListActiveByDate returns every active booking on a date for the roster.
func (r *BookingRepository) ListActiveByDate(ctx context.Context, date time.Time) ([]models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE b.date = $1 AND b.status = $2 ORDER BY l.full_name ASC`,
		bookingDetailColumns, bookingDetailJoins)
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, dateOnly(date), models.BookingStatusActive); err != nil {
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	return bookings, nil
}

func insertBooking(ctx context.Context, tx *sqlx.Tx, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.BookingStatusActive
	}
	booking.Date = parseDate(dateOnly(booking.Date))

	const query = `INSERT INTO bookings (id, learner_id, sponsor_id, date, lunch_a, lunch_b, lunch_c, lunch_d,
        status, had_priority, superseded_reason, created_at, updated_at)
        VALUES (:id, :learner_id, :sponsor_id, :date, :lunch_a, :lunch_b, :lunch_c, :lunch_d,
        :status, :had_priority, :superseded_reason, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// dateOnly strips the time component so DATE column comparisons are not
// affected by the caller's timezone.
func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}
