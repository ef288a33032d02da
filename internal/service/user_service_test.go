package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "hashed:" + p, nil }

func TestUserService_Register(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, plainHasher{}, zerolog.Nop())
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Ana@Example.com ", " Ana ", "secret1", model.RoleStudent)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "hashed:secret1", u.PasswordHash)

	_, err = svc.Register(ctx, "ana@example.com", "Other", "secret2", model.RoleStudent)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, "x@example.com", "X", "secret3", model.Role("GUEST"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.GetByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_UpsertResetsAccount(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, plainHasher{}, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "ranger@example.com", "Ranger", "one", model.RoleStudent)
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, "ranger@example.com", "Head Ranger", "two", model.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	stored, err := users.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Head Ranger", stored.Name)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.Equal(t, "hashed:two", stored.PasswordHash)
}
