package postgres

import (
	"context"
	"database/sql"
	"errors"

	"congregationhub/internal/domain"
)

type memberRepository struct {
	DB *sql.DB
}

func NewMemberRepository(db *sql.DB) domain.MemberRepository {
	return &memberRepository{
		DB: db,
	}
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `
		INSERT INTO members (user_id, full_name, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, m.UserID, m.FullName, m.Phone, m.Email, m.CreatedAt).Scan(&m.ID)
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `
		SELECT id, user_id, full_name, phone, email, created_at
		FROM members
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetByUserID(ctx context.Context, userID string) (*domain.Member, error) {
	query := `
		SELECT id, user_id, full_name, phone, email, created_at
		FROM members
		WHERE user_id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *memberRepository) scanOne(row *sql.Row) (*domain.Member, error) {
	m := &domain.Member{}
	err := row.Scan(&m.ID, &m.UserID, &m.FullName, &m.Phone, &m.Email, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}
