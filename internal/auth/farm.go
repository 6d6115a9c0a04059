package auth

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-plaza/internal/room"
	"golang.org/x/crypto/bcrypt"
)

// Farm is a stored farm identity allowed to join rooms.
type Farm struct {
	FarmId     int64         `json:"farm_id"`
	Username   string        `json:"username,omitempty"`
	Faction    room.Faction  `json:"faction,omitempty"`
	Experience float64       `json:"experience"`
	Equipped   room.Equipped `json:"equipped"`

	// TokenHash is a bcrypt hash of the token the farm's client presents when joining.
	TokenHash string `json:"token_hash"`
}

func (f *Farm) Validate() error {
	el := errors.NewErrorList()

	if f.FarmId <= 0 {
		el.Add(fmt.Errorf("farm_id must be a positive integer"))
	}

	if !f.Faction.Valid() {
		el.Add(fmt.Errorf("unknown faction %q", f.Faction))
	}

	if f.TokenHash == "" {
		el.Add(fmt.Errorf("token_hash is required"))
	} else if _, err := bcrypt.Cost([]byte(f.TokenHash)); err != nil {
		el.Add(fmt.Errorf("token_hash is not a bcrypt hash: %w", err))
	}

	return el.Err()
}

// HashToken returns the bcrypt hash stored for a farm's join token.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}
