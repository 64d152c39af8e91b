package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

const gameColumns = `id, scenario_id, turn, phase, current_player_id, active, successful_turns, max_successful_turns, created_at, updated_at`

// CreateGame persists a new session record.
func (s *Store) CreateGame(ctx context.Context, record game.Game) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO games (`+gameColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ScenarioID,
		record.Turn,
		string(record.Phase),
		toNullString(record.CurrentPlayerID),
		boolToInt(record.Active),
		record.SuccessfulTurns,
		record.MaxSuccessfulTurns,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// GetGame loads one session record.
func (s *Store) GetGame(ctx context.Context, id string) (game.Game, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	record, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Game{}, storage.ErrNotFound
		}
		return game.Game{}, fmt.Errorf("select game: %w", err)
	}
	return record, nil
}

// UpdateGame overwrites a session record.
func (s *Store) UpdateGame(ctx context.Context, record game.Game) error {
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE games
SET turn = ?, phase = ?, current_player_id = ?, active = ?, successful_turns = ?, max_successful_turns = ?, updated_at = ?
WHERE id = ?`,
		record.Turn,
		string(record.Phase),
		toNullString(record.CurrentPlayerID),
		boolToInt(record.Active),
		record.SuccessfulTurns,
		record.MaxSuccessfulTurns,
		toMillis(record.UpdatedAt),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteGame removes a session; players and history cascade.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return requireRowAffected(result)
}

// ListGames returns all sessions in creation order.
func (s *Store) ListGames(ctx context.Context) ([]game.Game, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	var records []game.Game
	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return records, nil
}

func scanGame(row rowScanner) (game.Game, error) {
	var record game.Game
	var phase string
	var currentPlayer sql.NullString
	var active int
	var createdAt, updatedAt int64
	err := row.Scan(
		&record.ID,
		&record.ScenarioID,
		&record.Turn,
		&phase,
		&currentPlayer,
		&active,
		&record.SuccessfulTurns,
		&record.MaxSuccessfulTurns,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return game.Game{}, err
	}
	record.Phase = game.Phase(phase)
	record.CurrentPlayerID = fromNullString(currentPlayer)
	record.Active = active != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// requireRowAffected maps zero-row updates/deletes onto ErrNotFound.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
