package domain

import (
	"context"
	"time"
)

// SessionStatus is the lifecycle status of an EventSession.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// EventSession is a single check-in window owned by exactly one Event.
// Its code is unique among currently active sessions and may be reused
// once the session ends.
type EventSession struct {
	ID        string        `json:"id"`
	EventID   string        `json:"event_id"`
	Code      string        `json:"code"`
	Status    SessionStatus `json:"status"`
	StartedBy string        `json:"started_by"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at"`
}

// SessionCodeGenerator produces candidate check-in codes. Candidates are not
// guaranteed unique; the repository checks them against active sessions and
// asks for another on collision.
type SessionCodeGenerator interface {
	Generate() (string, error)
}

// SessionRepository defines storage for check-in sessions, including the
// transactional start/stop paths that flip the owning event's status.
type SessionRepository interface {
	// StartSession atomically verifies the single-live invariant, generates a
	// unique code via gen (bounded by maxAttempts), inserts the session, and
	// marks the event live. Either everything commits or nothing does.
	// Errors: ErrNotFound (no such event), ErrSessionAlreadyActive,
	// *AnotherEventLiveError, ErrCodeSpaceExhausted.
	StartSession(ctx context.Context, eventID, startedBy string, gen SessionCodeGenerator, maxAttempts int) (*Event, *EventSession, error)

	// StopSession atomically ends the event's active session and marks the
	// event completed. ErrNotFound when no active session exists, which is
	// the expected outcome of a repeated stop.
	StopSession(ctx context.Context, eventID string) error

	// GetActiveByCode returns the active session with the given code.
	GetActiveByCode(ctx context.Context, code string) (*EventSession, error)

	// GetActive returns the single active session and its event, if any.
	GetActive(ctx context.Context) (*EventSession, *Event, error)

	// GetLatestByEventID returns the event's most recent session by start
	// time, active or ended.
	GetLatestByEventID(ctx context.Context, eventID string) (*EventSession, error)
}

// SessionService orchestrates event/session state transitions. Both
// operations require an elevated-privilege caller; role enforcement happens
// in the transport layer.
type SessionService interface {
	StartSession(ctx context.Context, eventID, callerID string) (*Event, *EventSession, error)
	StopSession(ctx context.Context, eventID string) error
	// GetActiveSession returns the currently live event/session pair, or
	// ErrNoActiveSession.
	GetActiveSession(ctx context.Context) (*Event, *EventSession, error)
}
