package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/fableforge/fableforge/internal/services/game/domain/dice"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// initiativeStat is the attribute added to the d20 initiative draw.
// Players without it roll flat.
const initiativeStat = "dexterity"

// RollInitiative assigns initiative and turn order to a game's players.
//
// Each player rolls d20 plus their dexterity stat; order 1..N is assigned by
// descending initiative, ties keeping creation order (stable sort). The
// order-1 player becomes the game's current player. Returns the players in
// their new order.
func (e *Engine) RollInitiative(ctx context.Context, gameID string) ([]player.Player, error) {
	unlock := e.locks.acquire(gameID)
	defer unlock()

	record, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	players, err := e.store.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("game %s has no players: %w", gameID, storage.ErrNotFound)
	}

	for i := range players {
		roll, err := e.roller.Roll(dice.D20)
		if err != nil {
			return nil, fmt.Errorf("roll initiative: %w", err)
		}
		players[i].Initiative = roll + players[i].Stat(initiativeStat, 0)
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Initiative > players[j].Initiative
	})
	for i := range players {
		players[i].Order = i + 1
		if err := e.store.UpdatePlayer(ctx, players[i]); err != nil {
			return nil, fmt.Errorf("persist initiative for player %s: %w", players[i].ID, err)
		}
	}

	record.CurrentPlayerID = players[0].ID
	record.UpdatedAt = e.now()
	if err := e.store.UpdateGame(ctx, record); err != nil {
		return nil, fmt.Errorf("persist current player: %w", err)
	}

	_ = e.events.InitiativeRolled(events.GameEvent{GameID: gameID, Timestamp: e.now()})

	return players, nil
}
