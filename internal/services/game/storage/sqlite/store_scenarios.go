package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// CreateScenario persists a scenario and its ordered role templates.
func (s *Store) CreateScenario(ctx context.Context, record scenario.Scenario) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create scenario: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO scenarios (id, name, description, objectives, mode, max_players, context, max_successful_turns, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		record.Description,
		record.Objectives,
		string(record.Mode),
		record.MaxPlayers,
		record.Context,
		record.MaxSuccessfulTurns,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.CodeScenarioNameTaken, "scenario name already exists")
		}
		return fmt.Errorf("insert scenario: %w", err)
	}

	for position, role := range record.Roles {
		statsJSON, err := json.Marshal(role.Stats)
		if err != nil {
			return fmt.Errorf("encode role stats: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO scenario_roles (scenario_id, position, name, description, stats_json)
VALUES (?, ?, ?, ?, ?)`,
			record.ID, position, role.Name, role.Description, string(statsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert scenario role: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create scenario: %w", err)
	}
	return nil
}

// GetScenario loads one scenario with its role templates.
func (s *Store) GetScenario(ctx context.Context, id string) (scenario.Scenario, error) {
	return s.getScenarioWhere(ctx, "id = ?", id)
}

// GetScenarioByName loads a scenario by its unique name.
func (s *Store) GetScenarioByName(ctx context.Context, name string) (scenario.Scenario, error) {
	return s.getScenarioWhere(ctx, "name = ?", name)
}

func (s *Store) getScenarioWhere(ctx context.Context, where string, arg any) (scenario.Scenario, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, description, objectives, mode, max_players, context, max_successful_turns, created_at
FROM scenarios WHERE `+where, arg)

	record, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scenario.Scenario{}, storage.ErrNotFound
		}
		return scenario.Scenario{}, fmt.Errorf("select scenario: %w", err)
	}

	roles, err := s.listScenarioRoles(ctx, record.ID)
	if err != nil {
		return scenario.Scenario{}, err
	}
	record.Roles = roles
	return record, nil
}

// ListScenarios returns all scenarios in creation order.
func (s *Store) ListScenarios(ctx context.Context) ([]scenario.Scenario, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, description, objectives, mode, max_players, context, max_successful_turns, created_at
FROM scenarios ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select scenarios: %w", err)
	}
	defer rows.Close()

	var records []scenario.Scenario
	for rows.Next() {
		record, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	for i := range records {
		roles, err := s.listScenarioRoles(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Roles = roles
	}
	return records, nil
}

func (s *Store) listScenarioRoles(ctx context.Context, scenarioID string) ([]scenario.Role, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT name, description, stats_json FROM scenario_roles
WHERE scenario_id = ? ORDER BY position`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("select scenario roles: %w", err)
	}
	defer rows.Close()

	var roles []scenario.Role
	for rows.Next() {
		var role scenario.Role
		var statsJSON string
		if err := rows.Scan(&role.Name, &role.Description, &statsJSON); err != nil {
			return nil, fmt.Errorf("scan scenario role: %w", err)
		}
		if err := json.Unmarshal([]byte(statsJSON), &role.Stats); err != nil {
			return nil, fmt.Errorf("decode role stats: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario roles: %w", err)
	}
	return roles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (scenario.Scenario, error) {
	var record scenario.Scenario
	var mode string
	var createdAt int64
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Description,
		&record.Objectives,
		&mode,
		&record.MaxPlayers,
		&record.Context,
		&record.MaxSuccessfulTurns,
		&createdAt,
	)
	if err != nil {
		return scenario.Scenario{}, err
	}
	record.Mode = scenario.Mode(mode)
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// isUniqueViolation detects SQLite unique constraint failures.
func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
