package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

const playerColumns = `id, game_id, display_name, role, stats_json, hp, mp, initiative, turn_order, alive, created_at`

// CreatePlayer persists a new participant.
func (s *Store) CreatePlayer(ctx context.Context, record player.Player) error {
	stats, err := encodeStats(record.Stats)
	if err != nil {
		return fmt.Errorf("encode player stats: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO players (`+playerColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.GameID,
		record.DisplayName,
		record.Role,
		stats,
		record.HP,
		record.MP,
		record.Initiative,
		record.Order,
		boolToInt(record.Alive),
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// GetPlayer loads one participant.
func (s *Store) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)

	record, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, storage.ErrNotFound
		}
		return player.Player{}, fmt.Errorf("select player: %w", err)
	}
	return record, nil
}

// UpdatePlayer overwrites a participant record.
func (s *Store) UpdatePlayer(ctx context.Context, record player.Player) error {
	stats, err := encodeStats(record.Stats)
	if err != nil {
		return fmt.Errorf("encode player stats: %w", err)
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE players
SET display_name = ?, role = ?, stats_json = ?, hp = ?, mp = ?, initiative = ?, turn_order = ?, alive = ?
WHERE id = ?`,
		record.DisplayName,
		record.Role,
		stats,
		record.HP,
		record.MP,
		record.Initiative,
		record.Order,
		boolToInt(record.Alive),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return requireRowAffected(result)
}

// DeletePlayer removes a participant.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return requireRowAffected(result)
}

// ListPlayers returns a game's participants. Players with an assigned turn
// order sort by it; before initiative every order is zero and creation order
// applies.
func (s *Store) ListPlayers(ctx context.Context, gameID string) ([]player.Player, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+playerColumns+` FROM players
WHERE game_id = ?
ORDER BY turn_order, created_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var records []player.Player
	for rows.Next() {
		record, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return records, nil
}

func scanPlayer(row rowScanner) (player.Player, error) {
	var record player.Player
	var stats string
	var alive int
	var createdAt int64
	err := row.Scan(
		&record.ID,
		&record.GameID,
		&record.DisplayName,
		&record.Role,
		&stats,
		&record.HP,
		&record.MP,
		&record.Initiative,
		&record.Order,
		&alive,
		&createdAt,
	)
	if err != nil {
		return player.Player{}, err
	}
	if err := json.Unmarshal([]byte(stats), &record.Stats); err != nil {
		return player.Player{}, fmt.Errorf("decode player stats: %w", err)
	}
	record.Alive = alive != 0
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func encodeStats(stats map[string]int) (string, error) {
	if stats == nil {
		stats = map[string]int{}
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
