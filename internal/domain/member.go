package domain

import (
	"context"
	"time"
)

// Member is a directory profile for a congregation member. Check-ins and
// roster rows reference members; the linked user account handles login.
type Member struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMember returns a new Member. ID is set by the repository on create.
func NewMember(userID, fullName, phone, email string, createdAt time.Time) *Member {
	return &Member{
		UserID:    userID,
		FullName:  fullName,
		Phone:     phone,
		Email:     email,
		CreatedAt: createdAt,
	}
}

// MemberRepository defines the interface for member profile storage
type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByUserID(ctx context.Context, userID string) (*Member, error)
}
