package models

import "time"

// Sponsor is a staff member who can claim learners for tutoring slots.
// Identity and credentials live here; the engine only ever reads the ID
// and subject.
type Sponsor struct {
	ID           string      `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FullName     string      `db:"full_name" json:"full_name"`
	Subject      Subject     `db:"subject" json:"subject"`
	LunchPeriod  LunchPeriod `db:"lunch_period" json:"lunch_period"`
	Active       bool        `db:"active" json:"active"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// SponsorFilter captures filtering options for listing sponsors.
type SponsorFilter struct {
	Subject   Subject
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
