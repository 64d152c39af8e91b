// Package game models a running session and its phase state.
package game

import "time"

// Phase identifies which side is expected to act next.
type Phase string

const (
	// PhaseAI means the narrator produces the next turn.
	PhaseAI Phase = "AI"
	// PhasePlayer means the current player resolves a pending option.
	PhasePlayer Phase = "PLAYER"
)

// Game is one running session of a scenario.
//
// CurrentPlayerID is empty until initiative has been rolled; once set it
// always references a player belonging to this game.
type Game struct {
	ID                 string
	ScenarioID         string
	Turn               int
	Phase              Phase
	CurrentPlayerID    string
	Active             bool
	SuccessfulTurns    int
	MaxSuccessfulTurns int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// New builds a fresh session in the AI phase at turn zero.
func New(id, scenarioID string, maxSuccessfulTurns int, now time.Time) Game {
	return Game{
		ID:                 id,
		ScenarioID:         scenarioID,
		Turn:               0,
		Phase:              PhaseAI,
		Active:             true,
		MaxSuccessfulTurns: maxSuccessfulTurns,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Progress reports completed successful turns as a fraction of the target.
// It returns 0 when no target threshold is configured.
func (g Game) Progress() float64 {
	if g.MaxSuccessfulTurns <= 0 {
		return 0
	}
	return float64(g.SuccessfulTurns) / float64(g.MaxSuccessfulTurns)
}
