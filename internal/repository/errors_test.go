package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	dup := translate(&pgconn.PgError{Code: "23505", ConstraintName: "exam_sessions_one_active_per_user"})
	assert.ErrorIs(t, dup, ErrDuplicate)
	assert.Contains(t, dup.Error(), "exam_sessions_one_active_per_user")

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))

	fk := translate(&pgconn.PgError{Code: "23503"})
	assert.False(t, errors.Is(fk, ErrDuplicate))
}
