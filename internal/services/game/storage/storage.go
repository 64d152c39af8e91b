// Package storage defines the persistence boundary of the game service.
//
// Entities are independent records keyed by opaque ids; relationships are
// resolved through explicit lookup calls, never live back-pointers. No
// transactional multi-entity API is assumed by the engine.
package storage

import (
	"context"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ScenarioStore persists authored scenarios.
type ScenarioStore interface {
	CreateScenario(ctx context.Context, record scenario.Scenario) error
	GetScenario(ctx context.Context, id string) (scenario.Scenario, error)
	GetScenarioByName(ctx context.Context, name string) (scenario.Scenario, error)
	ListScenarios(ctx context.Context) ([]scenario.Scenario, error)
}

// GameStore persists session records.
type GameStore interface {
	CreateGame(ctx context.Context, record game.Game) error
	GetGame(ctx context.Context, id string) (game.Game, error)
	UpdateGame(ctx context.Context, record game.Game) error
	DeleteGame(ctx context.Context, id string) error
	ListGames(ctx context.Context) ([]game.Game, error)
}

// PlayerStore persists participants.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, record player.Player) error
	GetPlayer(ctx context.Context, id string) (player.Player, error)
	UpdatePlayer(ctx context.Context, record player.Player) error
	DeletePlayer(ctx context.Context, id string) error
	// ListPlayers returns a game's players ordered by turn order when
	// initiative has been rolled, creation order before that.
	ListPlayers(ctx context.Context, gameID string) ([]player.Player, error)
}

// HistoryStore persists the append-only narrative log.
type HistoryStore interface {
	AppendHistory(ctx context.Context, entry history.Entry) error
	// ListHistory returns entries in creation order.
	ListHistory(ctx context.Context, gameID string) ([]history.Entry, error)
	// LatestHistory returns the most recently appended entry for a game.
	LatestHistory(ctx context.Context, gameID string) (history.Entry, error)
}

// Store aggregates all persistence interfaces the service needs.
type Store interface {
	ScenarioStore
	GameStore
	PlayerStore
	HistoryStore
	Close() error
}
