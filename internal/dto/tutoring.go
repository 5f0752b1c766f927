package dto

import "github.com/raptorhall/tutoring-api/internal/models"

// SubmitBookingRequest is the payload for claiming a learner on a date.
// Override is the second phase of the two-step override flow: it must be
// true to revoke a competing non-priority booking.
type SubmitBookingRequest struct {
	LearnerID string         `json:"learner_id" validate:"required"`
	Date      string         `json:"date" validate:"required,datetime=2006-01-02"`
	Lunches   models.Lunches `json:"lunches"`
	Override  bool           `json:"override"`
}

// PriorityInfo explains what the calendar rule says about a date.
type PriorityInfo struct {
	Date            string          `json:"date"`
	DayName         string          `json:"day_name"`
	Blocked         bool            `json:"blocked"`
	PrioritySubject *models.Subject `json:"priority_subject,omitempty"`
	Message         string          `json:"message"`
}

// ConflictInfo names the opposing booking on denials and override prompts.
type ConflictInfo struct {
	ExistingBookingID string         `json:"existing_booking_id"`
	ExistingSponsor   string         `json:"existing_sponsor"`
	ExistingSubject   models.Subject `json:"existing_subject"`
	CanOverride       bool           `json:"can_override"`
	Reason            string         `json:"reason"`
}
