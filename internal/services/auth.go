package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"congregationhub/internal/domain"
)

const (
	bcryptCost     = 10
	minPasswordLen = 8
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo    domain.UserRepository
	roleRepo    domain.RoleRepository
	memberRepo  domain.MemberRepository
	tokenIssuer domain.TokenIssuer
	jwtExpiry   time.Duration
}

// NewAuthService creates an AuthService with the given repositories and token issuer.
func NewAuthService(userRepo domain.UserRepository, roleRepo domain.RoleRepository, memberRepo domain.MemberRepository, tokenIssuer domain.TokenIssuer, jwtExpiry time.Duration) domain.AuthService {
	return &authService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		memberRepo:  memberRepo,
		tokenIssuer: tokenIssuer,
		jwtExpiry:   jwtExpiry,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, name, phone, role string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, domain.ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return nil, domain.ErrInvalidInput
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	roleCode := strings.TrimSpace(strings.ToLower(role))
	switch roleCode {
	case domain.RoleAdmin, domain.RolePastor, domain.RoleMember:
	default:
		roleCode = domain.RoleMember
	}

	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(prehash(salt, password)), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Salt:         salt,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	roleRecord, err := s.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", roleCode, err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, roleRecord.ID); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	member := domain.NewMember(user.ID, name, strings.TrimSpace(phone), email, now)
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member profile: %w", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(prehash(user.Salt, password))); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	roles, err := s.roleRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("list roles: %w", err)
	}
	codes := make([]string, 0, len(roles))
	for _, r := range roles {
		codes = append(codes, r.Code)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, codes, s.jwtExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// prehash keeps the bcrypt input under its 72-byte limit regardless of
// password length.
func prehash(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
