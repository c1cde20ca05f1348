package postgres

import (
	"context"
	"database/sql"
	"errors"

	"congregationhub/internal/domain"
)

type checkInRepository struct {
	DB *sql.DB
}

func NewCheckInRepository(db *sql.DB) domain.CheckInRepository {
	return &checkInRepository{
		DB: db,
	}
}

func (r *checkInRepository) Create(ctx context.Context, ci *domain.CheckIn) error {
	query := `
		INSERT INTO check_ins (session_id, event_id, type, member_id, guest_name, guest_phone, guest_email, adults, children, first_time, contact_ok, prayer_request, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`
	var (
		memberID      sql.NullString
		guestName     sql.NullString
		guestPhone    sql.NullString
		guestEmail    sql.NullString
		adults        sql.NullInt64
		children      sql.NullInt64
		firstTime     sql.NullBool
		contactOK     sql.NullBool
		prayerRequest sql.NullString
	)
	if ci.MemberID != nil {
		memberID = sql.NullString{String: *ci.MemberID, Valid: true}
	}
	if g := ci.Guest; g != nil {
		guestName = sql.NullString{String: g.FullName, Valid: true}
		guestPhone = sql.NullString{String: g.Phone, Valid: true}
		guestEmail = sql.NullString{String: g.Email, Valid: g.Email != ""}
		adults = sql.NullInt64{Int64: int64(g.Adults), Valid: true}
		children = sql.NullInt64{Int64: int64(g.Children), Valid: true}
		firstTime = sql.NullBool{Bool: g.FirstTime, Valid: true}
		contactOK = sql.NullBool{Bool: g.ContactOK, Valid: true}
		prayerRequest = sql.NullString{String: g.PrayerRequest, Valid: g.PrayerRequest != ""}
	}
	err := r.DB.QueryRowContext(ctx, query,
		ci.SessionID, ci.EventID, ci.Type, memberID,
		guestName, guestPhone, guestEmail, adults, children, firstTime, contactOK, prayerRequest,
	).Scan(&ci.ID, &ci.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// The partial unique index on (session_id, member_id) caught a
			// concurrent duplicate; the loser of the race lands here.
			return domain.ErrAlreadyCheckedIn
		}
		return err
	}
	return nil
}

func (r *checkInRepository) GetMemberCheckIn(ctx context.Context, sessionID, memberID string) (*domain.CheckIn, error) {
	query := `
		SELECT id, session_id, event_id, type, member_id, created_at
		FROM check_ins
		WHERE session_id = $1 AND member_id = $2
	`
	ci := &domain.CheckIn{}
	var mid sql.NullString
	err := r.DB.QueryRowContext(ctx, query, sessionID, memberID).
		Scan(&ci.ID, &ci.SessionID, &ci.EventID, &ci.Type, &mid, &ci.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if mid.Valid {
		ci.MemberID = &mid.String
	}
	return ci, nil
}

func (r *checkInRepository) ListRoster(ctx context.Context, sessionID string, typeFilter domain.CheckInType) ([]*domain.RosterRow, error) {
	// Member rows pull name/phone/email from the member profile; guest rows
	// carry their own fields. Member rows count as one adult.
	query := `
		SELECT c.id, c.type,
		       COALESCE(m.full_name, c.guest_name, '') AS name,
		       COALESCE(m.phone, c.guest_phone, '') AS phone,
		       COALESCE(m.email, c.guest_email, '') AS email,
		       COALESCE(c.adults, 1) AS adults,
		       COALESCE(c.children, 0) AS children,
		       COALESCE(c.first_time, FALSE) AS first_time,
		       c.created_at
		FROM check_ins c
		LEFT JOIN members m ON m.id = c.member_id
		WHERE c.session_id = $1
	`
	args := []interface{}{sessionID}
	if typeFilter != "" {
		query += ` AND c.type = $2`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := make([]*domain.RosterRow, 0)
	for rows.Next() {
		row := &domain.RosterRow{}
		if err := rows.Scan(&row.CheckInID, &row.Type, &row.Name, &row.Phone, &row.Email, &row.Adults, &row.Children, &row.FirstTime, &row.CheckedInAt); err != nil {
			return nil, err
		}
		roster = append(roster, row)
	}
	return roster, rows.Err()
}
