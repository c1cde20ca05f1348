package domain

import (
	"context"
	"time"
)

// CheckInType distinguishes member and guest attendance records.
type CheckInType string

const (
	CheckInTypeMember CheckInType = "member"
	CheckInTypeGuest  CheckInType = "guest"

	// CheckInTypeAll is accepted as a roster filter value and means no filter,
	// same as leaving the parameter off.
	CheckInTypeAll CheckInType = "all"
)

// GuestDetails holds the self-reported fields of a guest check-in.
type GuestDetails struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	FirstTime     bool   `json:"first_time"`
	ContactOK     bool   `json:"contact_ok"`
	PrayerRequest string `json:"prayer_request"`
}

// CheckIn is a single attendance record tied to one session. Immutable once
// created. MemberID is set only for member check-ins; Guest only for guests.
// EventID is denormalized for roster queries.
type CheckIn struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	EventID   string        `json:"event_id"`
	Type      CheckInType   `json:"type"`
	MemberID  *string       `json:"member_id,omitempty"`
	Guest     *GuestDetails `json:"guest,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// CheckInRecord bundles a stored check-in with its event for client display.
type CheckInRecord struct {
	CheckIn *CheckIn `json:"check_in"`
	Event   *Event   `json:"event"`
}

// RosterRow is one display/export row of a session roster. Member rows join
// the member profile; guest rows carry the guest fields directly.
type RosterRow struct {
	CheckInID   string      `json:"check_in_id"`
	Type        CheckInType `json:"type"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	Adults      int         `json:"adults"`
	Children    int         `json:"children"`
	FirstTime   bool        `json:"first_time"`
	CheckedInAt time.Time   `json:"checked_in_at"`
}

// CheckInRepository defines storage for attendance records.
type CheckInRepository interface {
	// Create inserts the check-in. A duplicate member check-in for the same
	// session is reported as ErrAlreadyCheckedIn; the partial unique index is
	// the authoritative guard under concurrency.
	Create(ctx context.Context, ci *CheckIn) error

	// GetMemberCheckIn returns the member's check-in for the session, or
	// ErrNotFound.
	GetMemberCheckIn(ctx context.Context, sessionID, memberID string) (*CheckIn, error)

	// ListRoster returns roster rows for the session, newest first.
	// typeFilter narrows to member or guest rows; empty means all.
	ListRoster(ctx context.Context, sessionID string, typeFilter CheckInType) ([]*RosterRow, error)
}

// CheckInService is the self-service check-in surface. Both paths are gated
// only by knowledge of an active session code.
type CheckInService interface {
	// CheckInMember records attendance for the authenticated user's member
	// profile against the session matching code.
	CheckInMember(ctx context.Context, code, userID string) (*CheckInRecord, error)

	// CheckInGuest records a guest check-in. When code is empty the single
	// currently active session is used. Repeated guest check-ins to the same
	// session are allowed.
	CheckInGuest(ctx context.Context, code string, guest GuestDetails) (*CheckInRecord, error)
}

// RosterService aggregates check-ins for staff display and CSV export.
type RosterService interface {
	// GetRoster resolves the event's most recent session and returns its
	// roster rows, optionally filtered by type.
	GetRoster(ctx context.Context, eventID string, typeFilter CheckInType) ([]*RosterRow, error)

	// ExportRosterCSV renders the unfiltered roster as CSV. The filename is
	// derived from the event title. ErrNotFound when the event never had a
	// session; a session with zero check-ins yields a header-only CSV.
	ExportRosterCSV(ctx context.Context, eventID string) (filename string, data []byte, err error)
}
