package rest

import (
	"time"

	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
)

type roleBody struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Stats       map[string]int `json:"stats"`
}

type createScenarioBody struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Objectives         string     `json:"objectives"`
	Mode               string     `json:"mode"`
	MaxPlayers         int        `json:"max_players"`
	Context            string     `json:"context"`
	Roles              []roleBody `json:"roles"`
	MaxSuccessfulTurns int        `json:"max_successful_turns"`
}

type scenarioBody struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Objectives         string     `json:"objectives"`
	Mode               string     `json:"mode"`
	MaxPlayers         int        `json:"max_players"`
	Context            string     `json:"context"`
	Roles              []roleBody `json:"roles"`
	MaxSuccessfulTurns int        `json:"max_successful_turns"`
	CreatedAt          time.Time  `json:"created_at"`
}

type createGameBody struct {
	ScenarioID string `json:"scenario_id"`
}

type gameBody struct {
	ID                 string    `json:"id"`
	ScenarioID         string    `json:"scenario_id"`
	Turn               int       `json:"turn"`
	Phase              string    `json:"phase"`
	CurrentPlayerID    string    `json:"current_player_id,omitempty"`
	Active             bool      `json:"active"`
	SuccessfulTurns    int       `json:"successful_turns"`
	MaxSuccessfulTurns int       `json:"max_successful_turns"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type createPlayerBody struct {
	GameID      string         `json:"game_id"`
	DisplayName string         `json:"display_name"`
	Role        string         `json:"role"`
	Stats       map[string]int `json:"stats"`
	HP          float64        `json:"hp"`
	MP          float64        `json:"mp"`
}

type playerBody struct {
	ID          string         `json:"id"`
	GameID      string         `json:"game_id"`
	DisplayName string         `json:"display_name"`
	Role        string         `json:"role"`
	Stats       map[string]int `json:"stats"`
	HP          float64        `json:"hp"`
	MP          float64        `json:"mp"`
	Initiative  int            `json:"initiative"`
	Order       int            `json:"order"`
	Alive       bool           `json:"alive"`
}

type playerTurnBody struct {
	OptionID int `json:"option_id"`
}

type historyEntryBody struct {
	ID        string     `json:"id"`
	GameID    string     `json:"game_id"`
	PlayerID  string     `json:"player_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Actor     string     `json:"actor"`
	Success   bool       `json:"success"`
	Result    resultBody `json:"result"`
}

type resultBody struct {
	Narration string           `json:"narration"`
	Options   []history.Option `json:"options"`
}

func toScenarioBody(record scenario.Scenario) scenarioBody {
	roles := make([]roleBody, 0, len(record.Roles))
	for _, role := range record.Roles {
		roles = append(roles, roleBody{Name: role.Name, Description: role.Description, Stats: role.Stats})
	}
	return scenarioBody{
		ID:                 record.ID,
		Name:               record.Name,
		Description:        record.Description,
		Objectives:         record.Objectives,
		Mode:               string(record.Mode),
		MaxPlayers:         record.MaxPlayers,
		Context:            record.Context,
		Roles:              roles,
		MaxSuccessfulTurns: record.MaxSuccessfulTurns,
		CreatedAt:          record.CreatedAt,
	}
}

func toGameBody(record game.Game) gameBody {
	return gameBody{
		ID:                 record.ID,
		ScenarioID:         record.ScenarioID,
		Turn:               record.Turn,
		Phase:              string(record.Phase),
		CurrentPlayerID:    record.CurrentPlayerID,
		Active:             record.Active,
		SuccessfulTurns:    record.SuccessfulTurns,
		MaxSuccessfulTurns: record.MaxSuccessfulTurns,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

func toPlayerBody(record player.Player) playerBody {
	return playerBody{
		ID:          record.ID,
		GameID:      record.GameID,
		DisplayName: record.DisplayName,
		Role:        record.Role,
		Stats:       record.Stats,
		HP:          record.HP,
		MP:          record.MP,
		Initiative:  record.Initiative,
		Order:       record.Order,
		Alive:       record.Alive,
	}
}

func toPlayerBodies(records []player.Player) []playerBody {
	bodies := make([]playerBody, 0, len(records))
	for _, record := range records {
		bodies = append(bodies, toPlayerBody(record))
	}
	return bodies
}

func toHistoryBody(entry history.Entry) historyEntryBody {
	options := entry.Result.Options
	if options == nil {
		options = []history.Option{}
	}
	return historyEntryBody{
		ID:        entry.ID,
		GameID:    entry.GameID,
		PlayerID:  entry.PlayerID,
		Timestamp: entry.Timestamp,
		Actor:     string(entry.Actor),
		Success:   entry.Success,
		Result:    resultBody{Narration: entry.Result.Narration, Options: options},
	}
}
