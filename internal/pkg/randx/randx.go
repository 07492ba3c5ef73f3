/*
Package randx provides cryptographically secure random identifiers.

It generates Base62 room codes suggested to clients that create a room without choosing
an id, and UUIDs for chat messages and connections.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// RoomCodeLength is the length of a generated room code.
	RoomCodeLength = 6

	// MaxRoomIDLength bounds caller-chosen room ids.
	MaxRoomIDLength = 32
)

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RoomCode generates a Base62 room code using crypto/rand.
func RoomCode() (string, error) {
	result := make([]byte, RoomCodeLength)

	for i := range RoomCodeLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for room code: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// MessageID generates a UUID v4 for a chat message.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates a UUID v4 for a live connection.
func ConnectionID() string {
	return uuid.New().String()
}

// IsValidRoomID checks a caller-chosen room id: 1 to MaxRoomIDLength characters of
// letters, digits, '_' or '-'.
func IsValidRoomID(id string) bool {
	if len(id) == 0 || len(id) > MaxRoomIDLength {
		return false
	}
	return roomIDPattern.MatchString(id)
}
