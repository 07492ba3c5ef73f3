package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"focusroom/internal/app/user"
)

const (
	createUserSQL = `INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id::text, username, email, password_hash`

	selectUserSQL = `SELECT id::text, username, email, password_hash FROM users`
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements user.Store on PostgreSQL.
type UserRepository struct {
	db Querier
}

// NewUserRepository wraps a pool (or any Querier).
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts an account. Taken usernames or emails yield user.ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*user.Account, error) {
	row := r.db.QueryRow(ctx, createUserSQL, username, email, passwordHash)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return account, nil
}

// GetUserByID looks an account up by id.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*user.Account, error) {
	return r.getBy(ctx, "id::text", id)
}

// GetUserByUsername looks an account up by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*user.Account, error) {
	return r.getBy(ctx, "username", username)
}

// GetUserByEmail looks an account up by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*user.Account, error) {
	return r.getBy(ctx, "email", email)
}

// getBy runs a single-row lookup. column is always one of the literals above.
func (r *UserRepository) getBy(ctx context.Context, column, value string) (*user.Account, error) {
	row := r.db.QueryRow(ctx, selectUserSQL+" WHERE "+column+" = $1", value)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*user.Account, error) {
	var a user.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
