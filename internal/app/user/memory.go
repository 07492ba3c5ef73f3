package user

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when a username or email is already taken.
var ErrDuplicate = errors.New("username or email already exists")

// MemoryStore is an in-process Store, used in development without a database and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*Account)}
}

// CreateUser stores a new account with a random UUID.
func (s *MemoryStore) CreateUser(_ context.Context, username, email, passwordHash string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Username == username || a.Email == email {
			return nil, ErrDuplicate
		}
	}

	account := &Account{
		User:         User{ID: uuid.NewString(), Username: username},
		Email:        email,
		PasswordHash: passwordHash,
	}
	s.accounts[account.ID] = account

	copied := *account
	return &copied, nil
}

// GetUserByID looks an account up by id.
func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.ID == id })
}

// GetUserByUsername looks an account up by username.
func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Username == username })
}

// GetUserByEmail looks an account up by email.
func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Email == email })
}

func (s *MemoryStore) find(match func(*Account) bool) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if match(a) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}
