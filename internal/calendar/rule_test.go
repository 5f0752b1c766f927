package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorhall/tutoring-api/internal/models"
)

// Week of 2025-09-01: Monday the 1st through Sunday the 7th.
func dateFor(day time.Weekday) time.Time {
	base := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(day) - int(time.Monday) + 7) % 7
	return base.AddDate(0, 0, offset)
}

func TestClassifyPriorityDays(t *testing.T) {
	rule := New(DefaultSchedule())

	expected := map[time.Weekday]models.Subject{
		time.Monday:   models.SubjectCS,
		time.Tuesday:  models.SubjectMath,
		time.Thursday: models.SubjectHumanities,
		time.Friday:   models.SubjectScience,
	}

	for day, subject := range expected {
		class := rule.Classify(dateFor(day))
		assert.False(t, class.Blocked, "%s should be a tutoring day", day)
		require.NotNil(t, class.PrioritySubject, "%s should carry a priority subject", day)
		assert.Equal(t, subject, *class.PrioritySubject)
		assert.Equal(t, day.String(), class.DayName)
	}
}

func TestClassifyBlockedDays(t *testing.T) {
	rule := New(DefaultSchedule())

	for _, day := range []time.Weekday{time.Wednesday, time.Saturday, time.Sunday} {
		class := rule.Classify(dateFor(day))
		assert.True(t, class.Blocked, "%s should be blocked", day)
		assert.Nil(t, class.PrioritySubject)
	}
}

func TestClassifyIsTotalOverAFullYear(t *testing.T) {
	rule := New(DefaultSchedule())

	day := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365; i++ {
		class := rule.Classify(day)
		if class.Blocked {
			assert.Nil(t, class.PrioritySubject)
		} else {
			require.NotNil(t, class.PrioritySubject)
			assert.True(t, class.PrioritySubject.Valid())
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestHasPriority(t *testing.T) {
	rule := New(DefaultSchedule())

	monday := dateFor(time.Monday)
	assert.True(t, rule.HasPriority(models.SubjectCS, monday))
	assert.False(t, rule.HasPriority(models.SubjectMath, monday))

	// Nobody holds priority on a blocked day.
	wednesday := dateFor(time.Wednesday)
	for _, subject := range models.Subjects() {
		assert.False(t, rule.HasPriority(subject, wednesday))
	}
}

func TestRuleCopiesSchedule(t *testing.T) {
	schedule := DefaultSchedule()
	rule := New(schedule)

	schedule[time.Monday] = models.SubjectScience

	assert.True(t, rule.HasPriority(models.SubjectCS, dateFor(time.Monday)))
}
