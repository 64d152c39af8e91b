package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/dice"
	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// PlayerTurn resolves the current player's chosen option.
//
// The option must exist in the last history entry's pending set. Success is
// a d100 draw at or under the option's declared success rate taken directly
// as a percentage threshold. On success or failure the option's hp/mp deltas
// apply, scaled to the vital range and clamped; a player-authored history
// entry records the outcome, the turn passes to the next player by order,
// and the phase flips back to AI. Validation failures mutate nothing.
func (e *Engine) PlayerTurn(ctx context.Context, gameID string, optionID int) (game.Game, error) {
	unlock := e.locks.acquire(gameID)
	defer unlock()

	record, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if !record.Active {
		return game.Game{}, apperrors.New(apperrors.CodeGameInactive, "game is no longer active")
	}
	if record.Phase != game.PhasePlayer {
		return game.Game{}, apperrors.New(apperrors.CodeInvalidState,
			fmt.Sprintf("player turn requested while phase is %s", record.Phase))
	}

	latest, err := e.store.LatestHistory(ctx, gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return game.Game{}, apperrors.New(apperrors.CodeNoPendingOptions, "game has no history to act on")
		}
		return game.Game{}, err
	}
	if len(latest.Result.Options) == 0 {
		return game.Game{}, apperrors.New(apperrors.CodeNoPendingOptions, "last history entry has no pending options")
	}
	option, ok := latest.Result.Find(optionID)
	if !ok {
		return game.Game{}, apperrors.New(apperrors.CodeOptionNotFound,
			fmt.Sprintf("option %d is not in the pending set", optionID))
	}

	acting, err := e.store.GetPlayer(ctx, record.CurrentPlayerID)
	if err != nil {
		return game.Game{}, err
	}

	draw, err := e.roller.Roll(dice.D100)
	if err != nil {
		return game.Game{}, fmt.Errorf("roll outcome: %w", err)
	}
	// Round the threshold so rates whose float product lands just under a
	// whole percent (0.29*100 = 28.999...) keep their declared percentage.
	success := draw <= int(math.Round(option.SuccessRate*dice.D100))

	acting.HP = player.ClampVital(acting.HP + option.HealthPointChange*player.MaxVital)
	acting.MP = player.ClampVital(acting.MP + option.ManaPointChange*player.MaxVital)
	if acting.HP <= player.MinVital {
		acting.Alive = false
	}
	if err := e.store.UpdatePlayer(ctx, acting); err != nil {
		return game.Game{}, fmt.Errorf("persist outcome deltas: %w", err)
	}

	entryID, err := e.newID()
	if err != nil {
		return game.Game{}, fmt.Errorf("generate entry id: %w", err)
	}
	now := e.now()
	if err := e.store.AppendHistory(ctx, history.Entry{
		ID:        entryID,
		GameID:    gameID,
		PlayerID:  acting.ID,
		Timestamp: now,
		Actor:     history.ActorUser,
		Success:   success,
		Result:    history.Result{Narration: outcomeNarration(acting, option, success)},
	}); err != nil {
		return game.Game{}, fmt.Errorf("append outcome entry: %w", err)
	}

	next, err := e.nextPlayer(ctx, gameID, acting)
	if err != nil {
		return game.Game{}, err
	}
	record.CurrentPlayerID = next.ID
	record.Phase = game.PhaseAI
	if success {
		record.SuccessfulTurns++
	}
	record.UpdatedAt = now
	if err := e.store.UpdateGame(ctx, record); err != nil {
		return game.Game{}, fmt.Errorf("persist player turn: %w", err)
	}

	_ = e.events.TurnCompleted(events.TurnEvent{
		GameID:    gameID,
		Turn:      record.Turn,
		Phase:     string(game.PhasePlayer),
		Actor:     string(history.ActorUser),
		PlayerID:  acting.ID,
		Success:   success,
		Timestamp: now,
	})

	return record, nil
}

// nextPlayer returns the player after the acting one by turn order, wrapping
// circularly.
func (e *Engine) nextPlayer(ctx context.Context, gameID string, acting player.Player) (player.Player, error) {
	players, err := e.store.ListPlayers(ctx, gameID)
	if err != nil {
		return player.Player{}, err
	}
	for i, p := range players {
		if p.ID == acting.ID {
			return players[(i+1)%len(players)], nil
		}
	}
	return player.Player{}, apperrors.New(apperrors.CodeInvalidState, "current player does not belong to the game")
}

func outcomeNarration(acting player.Player, option history.Option, success bool) string {
	qualifier := "succeeds"
	if !success {
		qualifier = "fails"
	}
	return fmt.Sprintf("%s chooses %q and %s.", acting.DisplayName, option.Description, qualifier)
}
