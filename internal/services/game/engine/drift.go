package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// DriftReport describes a mismatch between a game record and its history.
//
// Turn mutations are issued as separate writes, not one transaction; a crash
// between the history append and the game update leaves the two out of step.
// Callers detect this by comparing the phase the latest entry implies
// against the stored one.
type DriftReport struct {
	GameID        string
	StoredPhase   game.Phase
	ImpliedPhase  game.Phase
	LatestEntryID string
	Detail        string
}

// CheckDrift reconciles a game's phase against its latest history entry.
// It returns a report and true when the two disagree.
func (e *Engine) CheckDrift(ctx context.Context, gameID string) (DriftReport, bool, error) {
	record, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return DriftReport{}, false, err
	}

	latest, err := e.store.LatestHistory(ctx, gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// No history: only a fresh game at turn 0 in the AI phase is consistent.
			if record.Turn == 0 && record.Phase == game.PhaseAI {
				return DriftReport{}, false, nil
			}
			return DriftReport{
				GameID:       gameID,
				StoredPhase:  record.Phase,
				ImpliedPhase: game.PhaseAI,
				Detail:       fmt.Sprintf("game is at turn %d in phase %s but has no history", record.Turn, record.Phase),
			}, true, nil
		}
		return DriftReport{}, false, err
	}

	implied := impliedPhase(latest)
	if implied == record.Phase {
		return DriftReport{}, false, nil
	}
	return DriftReport{
		GameID:        gameID,
		StoredPhase:   record.Phase,
		ImpliedPhase:  implied,
		LatestEntryID: latest.ID,
		Detail:        fmt.Sprintf("latest entry was authored by %s, implying phase %s, but the game stores %s", latest.Actor, implied, record.Phase),
	}, true, nil
}

// impliedPhase derives which side should act next from who acted last: a
// narrator entry hands the turn to a player, a player entry hands it back.
func impliedPhase(latest history.Entry) game.Phase {
	if latest.Actor == history.ActorAssistant {
		return game.PhasePlayer
	}
	return game.PhaseAI
}
