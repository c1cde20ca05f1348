package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an Event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusLive      EventStatus = "live"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event represents a plannable gathering. At most one event may hold status
// live at any instant, system-wide.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Status      EventStatus `json:"status"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewEvent returns a new Event in draft status. ID is set by the repository on create.
func NewEvent(title, description, location, createdBy string, startsAt, endsAt, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Status:      EventStatusDraft,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
	}
}

// EventUpdate carries optional event edits; nil fields are unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Status      *EventStatus
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines staff-facing event management.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	// UpdateEvent edits title/time/location fields. Editing a live event is
	// rejected with ErrEventLocked; stop its session first.
	UpdateEvent(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	// CancelEvent moves the event to cancelled from any pre-completed,
	// non-live status.
	CancelEvent(ctx context.Context, eventID string) (*Event, error)
}
