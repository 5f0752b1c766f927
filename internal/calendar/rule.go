// Package calendar maps calendar dates to tutoring day classes. Four
// weekdays each grant priority to exactly one subject department;
// Wednesday and the weekend are blocked entirely.
package calendar

import (
	"time"

	"github.com/raptorhall/tutoring-api/internal/models"
)

// Schedule maps weekdays to the subject holding priority that day.
// Weekdays absent from the schedule are blocked.
type Schedule map[time.Weekday]models.Subject

// DefaultSchedule is the rotation the school runs: Wednesday is reserved
// for staff meetings, weekends have no tutoring.
func DefaultSchedule() Schedule {
	return Schedule{
		time.Monday:   models.SubjectCS,
		time.Tuesday:  models.SubjectMath,
		time.Thursday: models.SubjectHumanities,
		time.Friday:   models.SubjectScience,
	}
}

// DayClass is the classification of a single calendar date.
type DayClass struct {
	Date            time.Time       `json:"date"`
	Weekday         time.Weekday    `json:"-"`
	DayName         string          `json:"day_name"`
	Blocked         bool            `json:"blocked"`
	PrioritySubject *models.Subject `json:"priority_subject,omitempty"`
}

// Rule is an immutable weekday-to-subject table. Construct once, inject
// everywhere; reconfiguring the rotation means building a new Rule.
type Rule struct {
	schedule Schedule
}

// New copies the schedule so later mutation of the argument cannot leak in.
func New(schedule Schedule) *Rule {
	copied := make(Schedule, len(schedule))
	for day, subject := range schedule {
		copied[day] = subject
	}
	return &Rule{schedule: copied}
}

// Classify is total over all representable dates.
func (r *Rule) Classify(date time.Time) DayClass {
	weekday := date.Weekday()
	class := DayClass{
		Date:    date,
		Weekday: weekday,
		DayName: weekday.String(),
	}
	subject, ok := r.schedule[weekday]
	if !ok {
		class.Blocked = true
		return class
	}
	class.PrioritySubject = &subject
	return class
}

// HasPriority reports whether subject holds priority on the given date.
// Blocked days grant priority to nobody.
func (r *Rule) HasPriority(subject models.Subject, date time.Time) bool {
	prioritized, ok := r.schedule[date.Weekday()]
	return ok && prioritized == subject
}
