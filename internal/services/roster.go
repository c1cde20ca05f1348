package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"congregationhub/internal/domain"
)

type rosterService struct {
	eventRepo      domain.EventRepository
	sessionRepo    domain.SessionRepository
	checkInRepo    domain.CheckInRepository
	contextTimeout time.Duration
}

// NewRosterService creates the roster reader.
func NewRosterService(eventRepo domain.EventRepository, sessionRepo domain.SessionRepository, checkInRepo domain.CheckInRepository, timeout time.Duration) domain.RosterService {
	return &rosterService{
		eventRepo:      eventRepo,
		sessionRepo:    sessionRepo,
		checkInRepo:    checkInRepo,
		contextTimeout: timeout,
	}
}

func (s *rosterService) GetRoster(ctx context.Context, eventID string, typeFilter domain.CheckInType) ([]*domain.RosterRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	switch typeFilter {
	case "", domain.CheckInTypeAll:
		typeFilter = ""
	case domain.CheckInTypeMember, domain.CheckInTypeGuest:
	default:
		return nil, domain.ErrInvalidInput
	}

	_, session, err := s.resolveEventSession(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows, err := s.checkInRepo.ListRoster(ctx, session.ID, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return rows, nil
}

// csvHeader is the fixed export header; the column order is part of the
// export contract.
var csvHeader = []string{"Type", "Name", "Phone", "Email", "Adults", "Children", "First Time", "Checked In At"}

func (s *rosterService) ExportRosterCSV(ctx context.Context, eventID string) (string, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, session, err := s.resolveEventSession(ctx, eventID)
	if err != nil {
		return "", nil, err
	}

	rows, err := s.checkInRepo.ListRoster(ctx, session.ID, "")
	if err != nil {
		return "", nil, fmt.Errorf("list roster: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			string(row.Type),
			row.Name,
			row.Phone,
			row.Email,
			strconv.Itoa(row.Adults),
			strconv.Itoa(row.Children),
			yesNo(row.FirstTime),
			row.CheckedInAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, fmt.Errorf("flush csv: %w", err)
	}

	return csvFilename(event.Title), buf.Bytes(), nil
}

// resolveEventSession finds the event and its most recent session (active, or
// most recently ended). ErrNotFound when the event is missing or never had a
// session.
func (s *rosterService) resolveEventSession(ctx context.Context, eventID string) (*domain.Event, *domain.EventSession, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	session, err := s.sessionRepo.GetLatestByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get latest session: %w", err)
	}
	return event, session, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// csvFilename derives the download filename from the event title, keeping
// only alphanumerics.
func csvFilename(title string) string {
	var out []rune
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "roster.csv"
	}
	return string(out) + ".csv"
}
