package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"congregationhub/internal/domain"
)

type checkInService struct {
	sessionRepo    domain.SessionRepository
	checkInRepo    domain.CheckInRepository
	memberRepo     domain.MemberRepository
	eventRepo      domain.EventRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewCheckInService creates the self-service check-in writer.
func NewCheckInService(
	sessionRepo domain.SessionRepository,
	checkInRepo domain.CheckInRepository,
	memberRepo domain.MemberRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CheckInService {
	return &checkInService{
		sessionRepo:    sessionRepo,
		checkInRepo:    checkInRepo,
		memberRepo:     memberRepo,
		eventRepo:      eventRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *checkInService) CheckInMember(ctx context.Context, code, userID string) (*domain.CheckInRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.sessionRepo.GetActiveByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Ended and never-existed codes are indistinguishable on purpose.
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve session by code: %w", err)
	}

	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get member profile for user %s: %w", userID, err)
	}

	// Fast-path duplicate check for a friendly error; the unique index is
	// what actually guarantees one row under concurrent submissions.
	if _, err := s.checkInRepo.GetMemberCheckIn(ctx, session.ID, member.ID); err == nil {
		return nil, domain.ErrAlreadyCheckedIn
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing check-in: %w", err)
	}

	ci := &domain.CheckIn{
		SessionID: session.ID,
		EventID:   session.EventID,
		Type:      domain.CheckInTypeMember,
		MemberID:  &member.ID,
	}
	if err := s.checkInRepo.Create(ctx, ci); err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			return nil, domain.ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("create member check-in: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, session.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event for check-in: %w", err)
	}
	return &domain.CheckInRecord{CheckIn: ci, Event: event}, nil
}

func (s *checkInService) CheckInGuest(ctx context.Context, code string, guest domain.GuestDetails) (*domain.CheckInRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Resolve the session before validating fields; a dead code is reported
	// even when the form is also incomplete.
	var session *domain.EventSession
	code = strings.TrimSpace(code)
	if code != "" {
		var err error
		session, err = s.sessionRepo.GetActiveByCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("resolve session by code: %w", err)
		}
	} else {
		// Walk-ins without a code land on the single live session; there is
		// at most one by invariant.
		var err error
		session, _, err = s.sessionRepo.GetActive(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNoActiveSession
			}
			return nil, fmt.Errorf("get active session: %w", err)
		}
	}

	guest.FullName = strings.TrimSpace(guest.FullName)
	guest.Phone = strings.TrimSpace(guest.Phone)
	if guest.FullName == "" || guest.Phone == "" {
		return nil, fmt.Errorf("full name and phone are required: %w", domain.ErrInvalidInput)
	}
	if guest.Adults <= 0 {
		guest.Adults = 1
	}
	if guest.Children < 0 {
		guest.Children = 0
	}

	ci := &domain.CheckIn{
		SessionID: session.ID,
		EventID:   session.EventID,
		Type:      domain.CheckInTypeGuest,
		Guest:     &guest,
	}
	if err := s.checkInRepo.Create(ctx, ci); err != nil {
		return nil, fmt.Errorf("create guest check-in: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, session.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event for check-in: %w", err)
	}

	if guest.FirstTime && guest.ContactOK && guest.Email != "" {
		data := &domain.GuestFollowUpEmailData{
			Email:      guest.Email,
			Name:       guest.FullName,
			EventTitle: event.Title,
		}
		if err := s.emailService.SendGuestFollowUp(ctx, data); err != nil {
			// Follow-up mail must never fail the check-in.
			s.logger.WarnContext(ctx, "guest follow-up email failed",
				"event_id", event.ID, "session_id", session.ID, "err", err)
		}
	}

	return &domain.CheckInRecord{CheckIn: ci, Event: event}, nil
}
