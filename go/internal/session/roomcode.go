package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// RoomCodeLength is the number of characters in a room code.
	RoomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator produces candidate room codes.
type CodeGenerator func() (string, error)

// NewRoomCode returns a random 6-character uppercase alphanumeric code.
func NewRoomCode() (string, error) {
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ValidRoomCode reports whether code has the room code shape.
func ValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
