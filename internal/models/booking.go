package models

import "time"

// BookingStatus is the booking lifecycle state. Cancellation is one-way;
// rows are never deleted, giving an append-only audit trail.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Lunches is the set of lunch blocks requested on a booking. At least one
// must be set before a booking is persisted.
type Lunches struct {
	A bool `json:"a"`
	B bool `json:"b"`
	C bool `json:"c"`
	D bool `json:"d"`
}

// Any reports whether at least one lunch block is requested.
func (l Lunches) Any() bool {
	return l.A || l.B || l.C || l.D
}

// Periods returns the requested lunch blocks in order.
func (l Lunches) Periods() []LunchPeriod {
	var out []LunchPeriod
	if l.A {
		out = append(out, LunchA)
	}
	if l.B {
		out = append(out, LunchB)
	}
	if l.C {
		out = append(out, LunchC)
	}
	if l.D {
		out = append(out, LunchD)
	}
	return out
}

// Booking is one claim of a learner by a sponsor for one calendar date.
// For any (learner, date) pair at most one booking is active at a time;
// the repository's transactional writes enforce that invariant.
type Booking struct {
	ID        string        `db:"id" json:"id"`
	LearnerID string        `db:"learner_id" json:"learner_id"`
	SponsorID string        `db:"sponsor_id" json:"sponsor_id"`
	Date      time.Time     `db:"date" json:"date"`
	LunchA    bool          `db:"lunch_a" json:"lunch_a"`
	LunchB    bool          `db:"lunch_b" json:"lunch_b"`
	LunchC    bool          `db:"lunch_c" json:"lunch_c"`
	LunchD    bool          `db:"lunch_d" json:"lunch_d"`
	Status    BookingStatus `db:"status" json:"status"`
	// HadPriority is recorded at creation and never recomputed, even if
	// the calendar table is later reconfigured.
	HadPriority      bool      `db:"had_priority" json:"had_priority"`
	SupersededReason *string   `db:"superseded_reason" json:"superseded_reason,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Lunches collects the booking's lunch flags into a set.
func (b Booking) Lunches() Lunches {
	return Lunches{A: b.LunchA, B: b.LunchB, C: b.LunchC, D: b.LunchD}
}

// SetLunches copies the set onto the booking's columns.
func (b *Booking) SetLunches(l Lunches) {
	b.LunchA, b.LunchB, b.LunchC, b.LunchD = l.A, l.B, l.C, l.D
}

// BookingDetail joins booking rows with sponsor and learner context so
// denial messages can name the opposing party without extra lookups.
type BookingDetail struct {
	Booking
	SponsorName    string  `db:"sponsor_name" json:"sponsor_name"`
	SponsorSubject Subject `db:"sponsor_subject" json:"sponsor_subject"`
	LearnerName    string  `db:"learner_name" json:"learner_name"`
}

// BookingFilter captures filters for listing bookings.
type BookingFilter struct {
	LearnerID string
	SponsorID string
	Date      *time.Time
	Status    BookingStatus
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
