// Package resolver decides the outcome of a booking request against the
// current holder of a (learner, date) slot. It is pure: no I/O, no clock,
// no mutation. The store applies whatever the resolver decides.
package resolver

import (
	"fmt"

	"time"

	"github.com/raptorhall/tutoring-api/internal/calendar"
	"github.com/raptorhall/tutoring-api/internal/models"
)

// OutcomeKind enumerates the possible decisions.
type OutcomeKind string

const (
	// Accept means the slot is free; create the booking.
	Accept OutcomeKind = "accept"
	// Deny means the holder keeps the slot; nothing may change that except
	// the holder cancelling.
	Deny OutcomeKind = "deny"
	// OverrideRequired means the requester outranks the holder but must
	// explicitly confirm revoking the held booking.
	OverrideRequired OutcomeKind = "override_required"
)

// Outcome is the resolver's decision plus the context callers need to
// render an explanation.
type Outcome struct {
	Kind        OutcomeKind
	HadPriority bool
	Reason      string
	// HeldBy identifies the opposing booking's sponsor for Deny and
	// OverrideRequired outcomes.
	HeldBy *models.BookingDetail
}

// Resolver applies the weekday priority rule to contested slots.
type Resolver struct {
	rule *calendar.Rule
}

// New constructs a Resolver over the given calendar rule.
func New(rule *calendar.Rule) *Resolver {
	return &Resolver{rule: rule}
}

// Decide produces the outcome for a request by sponsor against the existing
// active booking, if any. Callers are responsible for rejecting blocked
// days before asking; on a blocked day neither side has priority and the
// result would be a plain first-come denial.
//
// The ordering is total: a priority holder outranks a non-holder, and the
// existing booking wins among equals. Only the requester-has-priority case
// is overridable.
func (r *Resolver) Decide(requesting models.Sponsor, existing *models.BookingDetail, date time.Time) Outcome {
	reqPriority := r.rule.HasPriority(requesting.Subject, date)

	if existing == nil {
		return Outcome{Kind: Accept, HadPriority: reqPriority}
	}

	heldPriority := r.rule.HasPriority(existing.SponsorSubject, date)
	dayName := date.Weekday().String()

	switch {
	case reqPriority && !heldPriority:
		return Outcome{
			Kind:        OverrideRequired,
			HadPriority: true,
			Reason:      fmt.Sprintf("%s has priority on %s", requesting.Subject, dayName),
			HeldBy:      existing,
		}
	case heldPriority && !reqPriority:
		return Outcome{
			Kind:   Deny,
			Reason: fmt.Sprintf("%s has priority on %ss", existing.SponsorSubject, dayName),
			HeldBy: existing,
		}
	case reqPriority && heldPriority:
		// Same department twice; the earlier booking keeps the learner.
		return Outcome{
			Kind:        Deny,
			HadPriority: true,
			Reason:      fmt.Sprintf("both sponsors hold %s priority for this day", requesting.Subject),
			HeldBy:      existing,
		}
	default:
		return Outcome{
			Kind:   Deny,
			Reason: "first come, first served",
			HeldBy: existing,
		}
	}
}
