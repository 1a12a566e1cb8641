package gameid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Alphabet is the set of characters used in room codes.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the length of a room code.
const DefaultLength = 6

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes with configurable randomness
type Generator struct {
	randSource RandSource
	length     int
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand; a
// non-positive length falls back to DefaultLength.
func NewGenerator(randSource RandSource, length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{randSource: randSource, length: length}
}

// Length returns the code length this generator produces.
func (g *Generator) Length() int {
	return g.length
}

// RoomCode returns a fresh random room code.
func (g *Generator) RoomCode() string {
	code := make([]byte, g.length)
	for i := range code {
		code[i] = Alphabet[g.intN(len(Alphabet))]
	}
	return string(code)
}

// UniqueRoomCode draws codes until taken reports one as free.
func (g *Generator) UniqueRoomCode(taken func(string) bool) string {
	for {
		code := g.RoomCode()
		if !taken(code) {
			return code
		}
	}
}

func (g *Generator) intN(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return int(v.Int64())
}

// Normalize upper-cases and trims a code typed by a player.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that code has the given length and only uses Alphabet.
func Validate(code string, length int) error {
	if len(code) != length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", length, len(code))
	}
	for i, char := range code {
		if !strings.ContainsRune(Alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}

// SessionID returns a time-ordered unique id for a game session.
func SessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParticipantID returns a random id for a connected player.
func ParticipantID() string {
	return uuid.NewString()
}
