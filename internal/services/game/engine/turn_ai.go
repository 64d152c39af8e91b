package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/narrator"
)

// AITurn runs one narrator turn.
//
// The prompt is assembled from the scenario, players, and full history; the
// narrator's reply passes through the recovery ladder and acceptance rules
// before anything is written. On any failure the game is untouched, so the
// operation is safely retryable.
func (e *Engine) AITurn(ctx context.Context, gameID string) (game.Game, error) {
	unlock := e.locks.acquire(gameID)
	defer unlock()

	record, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if !record.Active {
		return game.Game{}, apperrors.New(apperrors.CodeGameInactive, "game is no longer active")
	}
	if record.Phase != game.PhaseAI {
		return game.Game{}, apperrors.New(apperrors.CodeInvalidState,
			fmt.Sprintf("ai turn requested while phase is %s", record.Phase))
	}

	sc, err := e.store.GetScenario(ctx, record.ScenarioID)
	if err != nil {
		return game.Game{}, err
	}
	players, err := e.store.ListPlayers(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}
	entries, err := e.store.ListHistory(ctx, gameID)
	if err != nil {
		return game.Game{}, err
	}

	messages := buildPrompt(sc, record, players, entries)

	chatCtx, span := otel.Tracer("game/engine").Start(ctx, "narrator.chat")
	raw, err := e.narrator.Chat(chatCtx, narrator.Request{Messages: messages, ForceJSON: true})
	span.End()
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return game.Game{}, err
		}
		return game.Game{}, apperrors.Wrap(apperrors.CodeUpstreamFailure, "narrator call failed", err)
	}

	result := narrator.Parse(raw)
	if err := narrator.Accept(result, record.Turn, lastNarratorNarration(entries)); err != nil {
		return game.Game{}, err
	}

	entryID, err := e.newID()
	if err != nil {
		return game.Game{}, fmt.Errorf("generate entry id: %w", err)
	}
	now := e.now()
	if err := e.store.AppendHistory(ctx, history.Entry{
		ID:        entryID,
		GameID:    gameID,
		Timestamp: now,
		Actor:     history.ActorAssistant,
		Result:    result,
	}); err != nil {
		return game.Game{}, fmt.Errorf("append narrator entry: %w", err)
	}

	record.Turn++
	record.Phase = game.PhasePlayer
	record.UpdatedAt = now
	if err := e.store.UpdateGame(ctx, record); err != nil {
		return game.Game{}, fmt.Errorf("persist ai turn: %w", err)
	}

	_ = e.events.TurnCompleted(events.TurnEvent{
		GameID:    gameID,
		Turn:      record.Turn,
		Phase:     string(game.PhaseAI),
		Actor:     string(history.ActorAssistant),
		Timestamp: now,
	})

	return record, nil
}

// History returns a game's entries in creation order, failing with NotFound
// when the game itself is absent.
func (e *Engine) History(ctx context.Context, gameID string) ([]history.Entry, error) {
	if _, err := e.store.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	entries, err := e.store.ListHistory(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return entries, nil
}

// lastNarratorNarration returns the narration of the most recent
// narrator-authored entry, for the anti-repetition guard.
func lastNarratorNarration(entries []history.Entry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Actor == history.ActorAssistant {
			return entries[i].Result.Narration
		}
	}
	return ""
}
