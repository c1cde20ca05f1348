package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"congregationhub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = "id, title, description, location, starts_at, ends_at, status, created_by, created_at"

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Status, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, location, starts_at, ends_at, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Status, e.CreatedBy, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY starts_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Status, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *upd.Location)
		n++
	}
	if upd.StartsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("starts_at = $%d", n))
		args = append(args, *upd.StartsAt)
		n++
	}
	if upd.EndsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("ends_at = $%d", n))
		args = append(args, *upd.EndsAt)
		n++
	}
	if upd.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, *upd.Status)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch the current row.
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`
	`, strings.Join(setClauses, ", "), n)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
