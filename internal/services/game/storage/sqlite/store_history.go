package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

const historyColumns = `id, game_id, player_id, actor, success, result_json, created_at`

// AppendHistory records one immutable narrative entry. Ordering is carried
// by the autoincrementing seq column, not the caller's clock.
func (s *Store) AppendHistory(ctx context.Context, entry history.Entry) error {
	result, err := history.EncodeResult(entry.Result)
	if err != nil {
		return fmt.Errorf("encode history result: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO history (`+historyColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.GameID,
		toNullString(entry.PlayerID),
		string(entry.Actor),
		boolToInt(entry.Success),
		string(result),
		toMillis(entry.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// ListHistory returns a game's entries oldest first.
func (s *Store) ListHistory(ctx context.Context, gameID string) ([]history.Entry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+historyColumns+` FROM history
WHERE game_id = ?
ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// LatestHistory returns the most recently appended entry for a game.
func (s *Store) LatestHistory(ctx context.Context, gameID string) (history.Entry, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+historyColumns+` FROM history
WHERE game_id = ?
ORDER BY seq DESC
LIMIT 1`, gameID)

	entry, err := scanHistoryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return history.Entry{}, storage.ErrNotFound
		}
		return history.Entry{}, fmt.Errorf("select latest history: %w", err)
	}
	return entry, nil
}

func scanHistoryEntry(row rowScanner) (history.Entry, error) {
	var entry history.Entry
	var playerID sql.NullString
	var actor string
	var success int
	var resultJSON string
	var createdAt int64
	err := row.Scan(
		&entry.ID,
		&entry.GameID,
		&playerID,
		&actor,
		&success,
		&resultJSON,
		&createdAt,
	)
	if err != nil {
		return history.Entry{}, err
	}
	result, err := history.DecodeResult([]byte(resultJSON))
	if err != nil {
		return history.Entry{}, fmt.Errorf("decode history result: %w", err)
	}
	entry.PlayerID = fromNullString(playerID)
	entry.Actor = history.ActorRole(actor)
	entry.Success = success != 0
	entry.Result = result
	entry.Timestamp = fromMillis(createdAt)
	return entry, nil
}
