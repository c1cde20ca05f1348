package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"congregationhub/internal/domain"
)

// liveSessionLockKey is the constant advisory-lock key every start/stop
// transaction must acquire before touching the single-live invariant. The
// lock is transaction-scoped (pg_advisory_xact_lock) and released on
// commit or rollback.
const liveSessionLockKey = int64(0x436f6e674875) // "CongHu"

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

const sessionColumns = "id, event_id, code, status, started_by, started_at, ended_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.EventSession, error) {
	s := &domain.EventSession{}
	var endedAt sql.NullTime
	err := row.Scan(&s.ID, &s.EventID, &s.Code, &s.Status, &s.StartedBy, &s.StartedAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return s, nil
}

func (r *sessionRepository) StartSession(ctx context.Context, eventID, startedBy string, gen domain.SessionCodeGenerator, maxAttempts int) (*domain.Event, *domain.EventSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin start-session tx: %w", err)
	}
	defer tx.Rollback()

	// Serialize all start/stop operations on the global live slot. Without
	// this, two concurrent starts for different events can both pass the
	// "no other event live" check before either commits.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, liveSessionLockKey); err != nil {
		return nil, nil, fmt.Errorf("acquire live-session lock: %w", err)
	}

	event := &domain.Event{}
	err = tx.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&event.ID, &event.Title, &event.Description, &event.Location, &event.StartsAt, &event.EndsAt, &event.Status, &event.CreatedBy, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	if event.Status == domain.EventStatusCompleted || event.Status == domain.EventStatusCancelled {
		return nil, nil, domain.ErrEventLocked
	}

	var hasActive bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM event_sessions WHERE event_id = $1 AND status = 'active')
	`, eventID).Scan(&hasActive)
	if err != nil {
		return nil, nil, err
	}
	if hasActive {
		return nil, nil, domain.ErrSessionAlreadyActive
	}

	var otherID, otherTitle string
	err = tx.QueryRowContext(ctx, `
		SELECT e.id, e.title
		FROM events e
		INNER JOIN event_sessions s ON s.event_id = e.id
		WHERE s.status = 'active' AND e.id <> $1
		LIMIT 1
	`, eventID).Scan(&otherID, &otherTitle)
	if err == nil {
		return nil, nil, &domain.AnotherEventLiveError{EventID: otherID, Title: otherTitle}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}

	// The collision check and the insert share this transaction, so no other
	// start can claim the same code in between.
	code, err := pickCode(ctx, tx, gen, maxAttempts)
	if err != nil {
		return nil, nil, err
	}

	session := &domain.EventSession{
		EventID:   eventID,
		Code:      code,
		Status:    domain.SessionStatusActive,
		StartedBy: startedBy,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO event_sessions (event_id, code, status, started_by, started_at)
		VALUES ($1, $2, 'active', $3, NOW())
		RETURNING id, started_at
	`, eventID, code, startedBy).Scan(&session.ID, &session.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Another process won the race despite the advisory lock (e.g. a
			// writer outside this code path). The partial unique index keeps
			// the invariant; report it as the ordinary conflict.
			return nil, nil, domain.ErrSessionAlreadyActive
		}
		return nil, nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE events SET status = 'live' WHERE id = $1`, eventID); err != nil {
		return nil, nil, err
	}
	event.Status = domain.EventStatusLive

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit start-session tx: %w", err)
	}
	return event, session, nil
}

// pickCode samples candidates from gen until one is free among active
// sessions, giving up after maxAttempts.
func pickCode(ctx context.Context, tx *sql.Tx, gen domain.SessionCodeGenerator, maxAttempts int) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		candidate, err := gen.Generate()
		if err != nil {
			return "", fmt.Errorf("generate session code: %w", err)
		}
		var taken bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM event_sessions WHERE code = $1 AND status = 'active')
		`, candidate).Scan(&taken)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

func (r *sessionRepository) StopSession(ctx context.Context, eventID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stop-session tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, liveSessionLockKey); err != nil {
		return fmt.Errorf("acquire live-session lock: %w", err)
	}

	var sessionID string
	err = tx.QueryRowContext(ctx, `
		UPDATE event_sessions
		SET status = 'ended', ended_at = NOW()
		WHERE event_id = $1 AND status = 'active'
		RETURNING id
	`, eventID).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No active session; a repeated stop lands here.
			return domain.ErrNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE events SET status = 'completed' WHERE id = $1`, eventID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stop-session tx: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetActiveByCode(ctx context.Context, code string) (*domain.EventSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM event_sessions
		WHERE code = $1 AND status = 'active'
	`
	return scanSession(r.DB.QueryRowContext(ctx, query, code))
}

func (r *sessionRepository) GetActive(ctx context.Context) (*domain.EventSession, *domain.Event, error) {
	query := `
		SELECT s.id, s.event_id, s.code, s.status, s.started_by, s.started_at, s.ended_at,
		       e.id, e.title, e.description, e.location, e.starts_at, e.ends_at, e.status, e.created_by, e.created_at
		FROM event_sessions s
		INNER JOIN events e ON e.id = s.event_id
		WHERE s.status = 'active'
		LIMIT 1
	`
	s := &domain.EventSession{}
	e := &domain.Event{}
	var endedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query).Scan(
		&s.ID, &s.EventID, &s.Code, &s.Status, &s.StartedBy, &s.StartedAt, &endedAt,
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Status, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return s, e, nil
}

func (r *sessionRepository) GetLatestByEventID(ctx context.Context, eventID string) (*domain.EventSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM event_sessions
		WHERE event_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`
	return scanSession(r.DB.QueryRowContext(ctx, query, eventID))
}
