package models

import "time"

// Learner is the student being scheduled. Owned by the directory; the
// engine references learners but never mutates them.
type Learner struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	GradeLevel int       `db:"grade_level" json:"grade_level"`
	// Homeroom sponsor per rotation period, for display and grouping only.
	R1        *string   `db:"r1_sponsor_id" json:"r1_sponsor_id,omitempty"`
	R2        *string   `db:"r2_sponsor_id" json:"r2_sponsor_id,omitempty"`
	RR        *string   `db:"rr_sponsor_id" json:"rr_sponsor_id,omitempty"`
	R4        *string   `db:"r4_sponsor_id" json:"r4_sponsor_id,omitempty"`
	R5        *string   `db:"r5_sponsor_id" json:"r5_sponsor_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LearnerFilter captures filtering options for listing learners.
type LearnerFilter struct {
	Search    string
	Grade     int
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
