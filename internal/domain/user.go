package domain

import "time"

// ShareMode controls who can see a user's public calendar.
type ShareMode string

const (
	SharePrivate    ShareMode = "private"
	SharePublicView ShareMode = "public_view"
	SharePublicEdit ShareMode = "public_edit"
)

// Valid reports whether m is a known share mode.
func (m ShareMode) Valid() bool {
	switch m {
	case SharePrivate, SharePublicView, SharePublicEdit:
		return true
	}
	return false
}

// User is the domain entity for a user account. PublicSlug and EditToken are
// set only while sharing is enabled.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         *string
	PublicSlug   *string
	ShareMode    ShareMode
	EditToken    *string
	IsActive     bool

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// AccessLevel is the effective permission resolved from a share slug.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessView
	AccessEdit
)

// PublicAccess is the result of resolving a share slug.
type PublicAccess struct {
	OwnerID int64
	Level   AccessLevel
}
