package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"congregationhub/internal/domain"
)

type sessionService struct {
	sessionRepo     domain.SessionRepository
	codeGen         domain.SessionCodeGenerator
	codeMaxAttempts int
	contextTimeout  time.Duration
}

// NewSessionService creates the session controller. codeMaxAttempts bounds
// the code-generation retry loop inside the start transaction.
func NewSessionService(sessionRepo domain.SessionRepository, codeGen domain.SessionCodeGenerator, codeMaxAttempts int, timeout time.Duration) domain.SessionService {
	return &sessionService{
		sessionRepo:     sessionRepo,
		codeGen:         codeGen,
		codeMaxAttempts: codeMaxAttempts,
		contextTimeout:  timeout,
	}
}

func (s *sessionService) StartSession(ctx context.Context, eventID, callerID string) (*domain.Event, *domain.EventSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, session, err := s.sessionRepo.StartSession(ctx, eventID, callerID, s.codeGen, s.codeMaxAttempts)
	if err != nil {
		var liveErr *domain.AnotherEventLiveError
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrSessionAlreadyActive),
			errors.Is(err, domain.ErrEventLocked),
			errors.Is(err, domain.ErrCodeSpaceExhausted),
			errors.As(err, &liveErr):
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("start session for event %s: %w", eventID, err)
	}
	return event, session, nil
}

func (s *sessionService) StopSession(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.sessionRepo.StopSession(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Stopping twice is safe; the second call simply finds nothing
			// active and reports it.
			return domain.ErrNotFound
		}
		return fmt.Errorf("stop session for event %s: %w", eventID, err)
	}
	return nil
}

func (s *sessionService) GetActiveSession(ctx context.Context) (*domain.Event, *domain.EventSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, event, err := s.sessionRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNoActiveSession
		}
		return nil, nil, fmt.Errorf("get active session: %w", err)
	}
	return event, session, nil
}
