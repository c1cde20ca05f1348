package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionAlreadyActive means the target event already has an active
	// check-in session.
	ErrSessionAlreadyActive = errors.New("session already active for this event")

	// ErrNoActiveSession means no check-in session is currently open.
	ErrNoActiveSession = errors.New("no active check-in session available")

	// ErrAlreadyCheckedIn means the member has already checked in to the session.
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrEventNotLive means an operation required the event to be live.
	ErrEventNotLive = errors.New("event is not live")

	// ErrEventLocked means the event cannot be edited in its current status.
	ErrEventLocked = errors.New("event cannot be modified in its current status")

	// ErrCodeSpaceExhausted means code generation gave up after the retry cap.
	// Surfaced distinctly from ordinary store errors so operators can tell
	// generation pressure apart from outages.
	ErrCodeSpaceExhausted = errors.New("could not generate a unique session code")

	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AnotherEventLiveError is returned by StartSession when a different event
// already holds the single live slot. It names the conflicting event so the
// caller can stop it explicitly; we never auto-end another event's session.
type AnotherEventLiveError struct {
	EventID string
	Title   string
}

func (e *AnotherEventLiveError) Error() string {
	return fmt.Sprintf("another event is live: %s (%s)", e.Title, e.EventID)
}
