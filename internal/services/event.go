package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"congregationhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewEventService creates the staff-facing event management service.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" || event.CreatedBy == "" {
		return domain.ErrInvalidInput
	}
	if !event.EndsAt.After(event.StartsAt) {
		return domain.ErrInvalidInput
	}

	event.Status = domain.EventStatusDraft
	event.CreatedAt = time.Now()
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Live events are edited through stop/start, not here.
	if event.Status == domain.EventStatusLive {
		return nil, domain.ErrEventLocked
	}

	if upd.Status != nil {
		// The only status change allowed through edit is publishing a draft;
		// live/completed transitions belong to the session controller and
		// cancellation to CancelEvent.
		if *upd.Status != domain.EventStatusScheduled || event.Status != domain.EventStatusDraft {
			return nil, domain.ErrInvalidInput
		}
	}

	startsAt := event.StartsAt
	if upd.StartsAt != nil {
		startsAt = *upd.StartsAt
	}
	endsAt := event.EndsAt
	if upd.EndsAt != nil {
		endsAt = *upd.EndsAt
	}
	if !endsAt.After(startsAt) {
		return nil, domain.ErrInvalidInput
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) CancelEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// A live event must be stopped before it can be cancelled, and a
	// completed event stays completed.
	if event.Status == domain.EventStatusLive || event.Status == domain.EventStatusCompleted {
		return nil, domain.ErrEventLocked
	}
	if event.Status == domain.EventStatusCancelled {
		return event, nil
	}

	cancelled := domain.EventStatusCancelled
	updated, err := s.eventRepo.Update(ctx, eventID, domain.EventUpdate{Status: &cancelled})
	if err != nil {
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	return updated, nil
}
