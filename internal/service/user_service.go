package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/repository"
)

// PasswordHasher hashes plaintext passwords. Implemented by AuthService.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// UserService manages student and admin accounts.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
	log    zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		log:    logger.Component(log, "user_service"),
	}
}

// GetByID returns one user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Register creates an account. A taken email is ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, email, name, password string, role model.Role) (*model.User, error) {
	u, err := s.build(email, name, password, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Int("user_id", u.ID).Str("role", string(role)).Msg("User created")
	return u, nil
}

// Upsert creates the account or resets its name, role and password.
func (s *UserService) Upsert(ctx context.Context, email, name, password string, role model.Role) (*model.User, error) {
	u, err := s.build(email, name, password, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpsertByEmail(ctx, u); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *UserService) build(email, name, password string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &model.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	}, nil
}
