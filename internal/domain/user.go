package domain

import (
	"context"
	"time"
)

// Role codes. Staff operations require admin or pastor.
const (
	RoleAdmin  = "admin"
	RolePastor = "pastor"
	RoleMember = "member"
)

// User represents a login account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role represents an application role (e.g. admin, pastor, member)
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID and roles.
type TokenVerifier interface {
	Verify(token string) (userID string, roles []string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RoleRepository defines the interface for role storage
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*Role, error)
	ListByUserID(ctx context.Context, userID string) ([]*Role, error)
}

// AuthService defines signup and login.
type AuthService interface {
	// SignUp creates a user with the given role (member unless the caller is
	// allowed to grant staff roles) and a linked member profile.
	SignUp(ctx context.Context, email, password, name, phone, role string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
