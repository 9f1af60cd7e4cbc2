package storage

import "errors"

var (
	// ErrNotFound is returned by point lookups that match no row
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned when a write violates a foreign key, NOT NULL or CHECK constraint
	ErrConstraint = errors.New("constraint violation")
	// ErrNotInitialized is returned when the database file does not exist yet
	ErrNotInitialized = errors.New("storage not initialized")
)

// EntryFilter narrows day-entry queries. Zero values mean no bound.
// From and To are inclusive YYYY-MM-DD dates; Month is YYYY-MM and wins over From/To.
type EntryFilter struct {
	From  string
	To    string
	Month string
	Limit uint64
}

// ItemFilter narrows log-item queries.
type ItemFilter struct {
	EntryFilter
	CategoryID int64
	Date       string
}

// DurationPoint is the summed duration of one category on one date
type DurationPoint struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// MoodPoint is the mood of one date
type MoodPoint struct {
	Date string `json:"date"`
	Mood int    `json:"mood"`
}
