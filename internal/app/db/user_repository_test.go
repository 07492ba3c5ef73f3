package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusroom/internal/app/user"
)

type fakeRow struct {
	values []string
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(*string)) = r.values[i]
	}
	return nil
}

type fakeQuerier struct {
	row  fakeRow
	sql  string
	args []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql = sql
	q.args = args
	return q.row
}

func TestUserRepository_GetUserByID(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{values: []string{"id-1", "ann", "ann@example.com", "hash"}}}
	repo := NewUserRepository(q)

	account, err := repo.GetUserByID(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: "id-1", Username: "ann"}, account.User)
	assert.Equal(t, "ann@example.com", account.Email)
	assert.Equal(t, "hash", account.PasswordHash)
	assert.True(t, strings.HasSuffix(q.sql, "WHERE id::text = $1"))
	assert.Equal(t, []any{"id-1"}, q.args)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "23505"}}})

	_, err := repo.CreateUser(context.Background(), "ann", "ann@example.com", "hash")
	assert.ErrorIs(t, err, user.ErrDuplicate)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(embedMigrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(embedMigrations, files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS users")
}
