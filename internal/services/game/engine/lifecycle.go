package engine

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// CreateScenario validates and persists authored scenario data.
func (e *Engine) CreateScenario(ctx context.Context, input scenario.CreateInput) (scenario.Scenario, error) {
	normalized, err := scenario.NormalizeCreateInput(input)
	if err != nil {
		return scenario.Scenario{}, err
	}

	scenarioID, err := e.newID()
	if err != nil {
		return scenario.Scenario{}, fmt.Errorf("generate scenario id: %w", err)
	}
	record := scenario.Scenario{
		ID:                 scenarioID,
		Name:               normalized.Name,
		Description:        normalized.Description,
		Objectives:         normalized.Objectives,
		Mode:               normalized.Mode,
		MaxPlayers:         normalized.MaxPlayers,
		Context:            normalized.Context,
		Roles:              normalized.Roles,
		MaxSuccessfulTurns: normalized.MaxSuccessfulTurns,
		CreatedAt:          e.now(),
	}
	if err := e.store.CreateScenario(ctx, record); err != nil {
		return scenario.Scenario{}, err
	}
	return record, nil
}

// GetScenario loads one scenario.
func (e *Engine) GetScenario(ctx context.Context, id string) (scenario.Scenario, error) {
	return e.store.GetScenario(ctx, id)
}

// ListScenarios returns all scenarios.
func (e *Engine) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	records, err := e.store.ListScenarios(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []scenario.Scenario{}
	}
	return records, nil
}

// CreateGame starts a session of a scenario: phase AI, turn zero, no
// current player until initiative is rolled.
func (e *Engine) CreateGame(ctx context.Context, scenarioID string) (game.Game, error) {
	if scenarioID == "" {
		return game.Game{}, apperrors.New(apperrors.CodeGameEmptyScenarioID, "game scenario id is required")
	}
	sc, err := e.store.GetScenario(ctx, scenarioID)
	if err != nil {
		return game.Game{}, err
	}

	gameID, err := e.newID()
	if err != nil {
		return game.Game{}, fmt.Errorf("generate game id: %w", err)
	}
	record := game.New(gameID, sc.ID, sc.MaxSuccessfulTurns, e.now())
	if err := e.store.CreateGame(ctx, record); err != nil {
		return game.Game{}, err
	}

	_ = e.events.GameCreated(events.GameEvent{GameID: record.ID, Timestamp: record.CreatedAt})

	return record, nil
}

// GetGame loads one session.
func (e *Engine) GetGame(ctx context.Context, id string) (game.Game, error) {
	return e.store.GetGame(ctx, id)
}

// ListGames returns all sessions.
func (e *Engine) ListGames(ctx context.Context) ([]game.Game, error) {
	records, err := e.store.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []game.Game{}
	}
	return records, nil
}

// DeleteGame removes a session; its players and history go with it.
func (e *Engine) DeleteGame(ctx context.Context, id string) error {
	unlock := e.locks.acquire(id)
	defer unlock()

	if err := e.store.DeleteGame(ctx, id); err != nil {
		return err
	}
	_ = e.events.GameDeleted(events.GameEvent{GameID: id, Timestamp: e.now()})
	return nil
}

// JoinGame adds a player to a session before it starts.
//
// The role must be one of the scenario's templates; its stat map seeds the
// player's stats, with explicit input values overriding template ones.
// Joining fails once the scenario's capacity is reached.
func (e *Engine) JoinGame(ctx context.Context, input player.CreateInput) (player.Player, error) {
	normalized, err := player.NormalizeCreateInput(input)
	if err != nil {
		return player.Player{}, err
	}

	unlock := e.locks.acquire(normalized.GameID)
	defer unlock()

	record, err := e.store.GetGame(ctx, normalized.GameID)
	if err != nil {
		return player.Player{}, err
	}
	sc, err := e.store.GetScenario(ctx, record.ScenarioID)
	if err != nil {
		return player.Player{}, err
	}

	existing, err := e.store.ListPlayers(ctx, record.ID)
	if err != nil {
		return player.Player{}, err
	}
	if len(existing) >= sc.MaxPlayers {
		return player.Player{}, apperrors.New(apperrors.CodeGameFull,
			fmt.Sprintf("game already has %d of %d players", len(existing), sc.MaxPlayers))
	}

	stats := normalized.Stats
	if normalized.Role != "" {
		role, ok := sc.Role(normalized.Role)
		if !ok {
			return player.Player{}, apperrors.New(apperrors.CodePlayerInvalidRole,
				fmt.Sprintf("role %q is not part of the scenario", normalized.Role))
		}
		merged := make(map[string]int, len(role.Stats)+len(stats))
		for key, value := range role.Stats {
			merged[key] = value
		}
		for key, value := range stats {
			merged[key] = value
		}
		stats = merged
	}

	hp, mp := normalized.HP, normalized.MP
	if hp == 0 {
		hp = player.MaxVital
	}
	if mp == 0 {
		mp = player.MaxVital
	}

	playerID, err := e.newID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}
	joined := player.Player{
		ID:          playerID,
		GameID:      record.ID,
		DisplayName: normalized.DisplayName,
		Role:        normalized.Role,
		Stats:       stats,
		HP:          hp,
		MP:          mp,
		Alive:       true,
		CreatedAt:   e.now(),
	}
	if err := e.store.CreatePlayer(ctx, joined); err != nil {
		return player.Player{}, err
	}
	return joined, nil
}

// GetPlayer loads one participant.
func (e *Engine) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	return e.store.GetPlayer(ctx, id)
}

// ListPlayers returns a game's participants in stored order.
func (e *Engine) ListPlayers(ctx context.Context, gameID string) ([]player.Player, error) {
	if _, err := e.store.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	players, err := e.store.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []player.Player{}
	}
	return players, nil
}

// RemovePlayer deletes a participant, refusing when the player is the
// game's current actor.
func (e *Engine) RemovePlayer(ctx context.Context, playerID string) error {
	record, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	unlock := e.locks.acquire(record.GameID)
	defer unlock()

	current, err := e.store.GetGame(ctx, record.GameID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err == nil && current.CurrentPlayerID == playerID {
		return apperrors.New(apperrors.CodeInvalidState, "cannot remove the game's current player")
	}

	return e.store.DeletePlayer(ctx, playerID)
}
