package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.CreateUser(ctx, "ann", "ann@example.com", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	_, err = s.CreateUser(ctx, "ann", "other@example.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = s.CreateUser(ctx, "other", "ann@example.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)

	for _, lookup := range []func() (*Account, error){
		func() (*Account, error) { return s.GetUserByID(ctx, a.ID) },
		func() (*Account, error) { return s.GetUserByUsername(ctx, "ann") },
		func() (*Account, error) { return s.GetUserByEmail(ctx, "ann@example.com") },
	} {
		got, err := lookup()
		require.NoError(t, err)
		assert.Equal(t, *a, *got)
	}

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.CreateUser(ctx, "ann", "ann@example.com", "hash")
	require.NoError(t, err)
	a.Username = "mutated"

	got, err := s.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)
}
