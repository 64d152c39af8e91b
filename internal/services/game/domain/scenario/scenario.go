// Package scenario models the immutable authoring data a session is built from.
//
// Scenarios are write-once: the authoring flow creates them and the turn
// engine only ever reads them. Mutation APIs are deliberately absent.
package scenario

import (
	"strings"
	"time"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
)

// Mode selects the adversarial framing of a scenario.
type Mode string

const (
	// ModePvE pits the players against the environment.
	ModePvE Mode = "PvE"
	// ModePvP pits the players against each other.
	ModePvP Mode = "PvP"
)

// DefaultMaxSuccessfulTurns is the progress threshold applied when the
// authoring payload does not provide one.
const DefaultMaxSuccessfulTurns = 10

// Role is a character template players pick from at session setup.
type Role struct {
	Name        string
	Description string
	Stats       map[string]int
}

// Scenario is the authored session blueprint.
type Scenario struct {
	ID                 string
	Name               string
	Description        string
	Objectives         string
	Mode               Mode
	MaxPlayers         int
	Context            string
	Roles              []Role
	MaxSuccessfulTurns int
	CreatedAt          time.Time
}

// Role returns the role template with the given name.
func (s Scenario) Role(name string) (Role, bool) {
	for _, role := range s.Roles {
		if role.Name == name {
			return role, true
		}
	}
	return Role{}, false
}

// CreateInput captures authoring fields for creating a scenario.
type CreateInput struct {
	Name               string
	Description        string
	Objectives         string
	Mode               Mode
	MaxPlayers         int
	Context            string
	Roles              []Role
	MaxSuccessfulTurns int
}

// NormalizeCreateInput validates and canonicalizes authoring input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeScenarioNameEmpty, "scenario name is required")
	}

	if input.Mode != ModePvE && input.Mode != ModePvP {
		return CreateInput{}, apperrors.New(apperrors.CodeScenarioInvalidMode, "scenario mode must be PvE or PvP")
	}

	if input.MaxPlayers <= 0 {
		return CreateInput{}, apperrors.New(apperrors.CodeScenarioInvalidCapacity, "scenario max players must be positive")
	}

	if len(input.Roles) == 0 {
		return CreateInput{}, apperrors.New(apperrors.CodeScenarioRolesEmpty, "scenario needs at least one role template")
	}
	for i := range input.Roles {
		input.Roles[i].Name = strings.TrimSpace(input.Roles[i].Name)
		if input.Roles[i].Name == "" {
			return CreateInput{}, apperrors.New(apperrors.CodeScenarioRolesEmpty, "scenario role name is required")
		}
		if input.Roles[i].Stats == nil {
			input.Roles[i].Stats = map[string]int{}
		}
	}

	if input.MaxSuccessfulTurns < 0 {
		return CreateInput{}, apperrors.New(apperrors.CodeScenarioInvalidThreshold, "scenario success threshold must be non-negative")
	}
	if input.MaxSuccessfulTurns == 0 {
		input.MaxSuccessfulTurns = DefaultMaxSuccessfulTurns
	}

	return input, nil
}
