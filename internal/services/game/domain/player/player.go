// Package player models a participant of one game session.
package player

import (
	"strings"
	"time"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
)

// Vitals bounds. Option effects are expressed as fractions of this range.
const (
	MinVital = 0.0
	MaxVital = 100.0
)

// Player is one participant of a game.
//
// Initiative and Order are zero until initiative has been rolled; afterwards
// Order values across a game's players form a permutation of 1..N.
type Player struct {
	ID          string
	GameID      string
	DisplayName string
	Role        string
	Stats       map[string]int
	HP          float64
	MP          float64
	Initiative  int
	Order       int
	Alive       bool
	CreatedAt   time.Time
}

// Stat returns the player's value for a named attribute, falling back to
// fallback when the attribute is absent.
func (p Player) Stat(name string, fallback int) int {
	if value, ok := p.Stats[name]; ok {
		return value
	}
	return fallback
}

// ClampVital bounds a vital value to the playable range.
func ClampVital(value float64) float64 {
	if value < MinVital {
		return MinVital
	}
	if value > MaxVital {
		return MaxVital
	}
	return value
}

// CreateInput captures the fields for adding a player to a game.
type CreateInput struct {
	GameID      string
	DisplayName string
	Role        string
	Stats       map[string]int
	HP          float64
	MP          float64
}

// NormalizeCreateInput validates and canonicalizes player creation input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.GameID = strings.TrimSpace(input.GameID)
	if input.GameID == "" {
		return CreateInput{}, apperrors.New(apperrors.CodePlayerEmptyGameID, "player game id is required")
	}

	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return CreateInput{}, apperrors.New(apperrors.CodePlayerEmptyDisplayName, "player display name is required")
	}

	input.Role = strings.TrimSpace(input.Role)

	if input.Stats == nil {
		input.Stats = map[string]int{}
	}

	if input.HP < MinVital || input.HP > MaxVital || input.MP < MinVital || input.MP > MaxVital {
		return CreateInput{}, apperrors.New(apperrors.CodePlayerInvalidVitals, "player hp/mp must be within the vital range")
	}

	return input, nil
}
