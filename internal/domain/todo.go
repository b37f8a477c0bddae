package domain

import "time"

// Status is the lifecycle state of a todo. Toggling always advances one step
// in the fixed cycle pending -> done -> partial -> pending.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusPartial Status = "partial"
)

// Next returns the status that follows s in the toggle cycle.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusDone
	case StatusDone:
		return StatusPartial
	default:
		return StatusPending
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusPartial:
		return true
	}
	return false
}

// Domain entity: the business object, independent of Gin, Postgres, Redis.
// TodoDate is a calendar date (UTC midnight); Version increases by exactly 1
// on every successful mutation.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	TodoDate    time.Time
	Status      Status
	Version     int
	IsDeleted   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoPatch is a partial update. Nil pointer = field not supplied.
// Description uses an explicit SetDescription flag so that "set to null"
// and "not supplied" stay distinguishable.
type TodoPatch struct {
	Title          *string
	SetDescription bool
	Description    *string
	TodoDate       *time.Time
	Status         *Status
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && !p.SetDescription && p.TodoDate == nil && p.Status == nil
}

// DaySummary is one row of the monthly summary: the count of still-open
// (pending or partial) todos on a date.
type DaySummary struct {
	TodoDate time.Time
	Count    int
}
