/*
Package user contains the identity handed to the room core by the Identity Gate.

The core never owns accounts; it only references the {id, username} pair resolved at
connection time. Store is the lookup surface of the account collaborator.
*/
package user

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when no account matches the lookup.
var ErrNotFound = errors.New("user not found")

// User represents the identity of a room participant.
type User struct {
	// ID is the opaque account identifier.
	ID string `json:"id"`

	// Username is the display name shown to other members.
	Username string `json:"username"`
}

// Account is a persisted user record, including the fields the room core never sees.
type Account struct {
	User
	Email        string
	PasswordHash string
}

// Store is the account collaborator used by the Identity Gate and the auth handlers.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*Account, error)
	GetUserByID(ctx context.Context, id string) (*Account, error)
	GetUserByUsername(ctx context.Context, username string) (*Account, error)
	GetUserByEmail(ctx context.Context, email string) (*Account, error)
}
