// Package rest exposes the game service over a versioned JSON HTTP surface.
package rest

import (
	"net/http"

	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
	"github.com/fableforge/fableforge/internal/services/game/engine"
)

// Handler routes the /v1 surface onto the turn engine.
type Handler struct {
	engine *engine.Engine
}

// NewHandler builds the HTTP handler around an engine.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// Routes returns the mux carrying the full /v1 surface.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/scenario", h.createScenario)
	mux.HandleFunc("GET /v1/scenarios", h.listScenarios)
	mux.HandleFunc("GET /v1/scenario/{id}", h.getScenario)

	mux.HandleFunc("POST /v1/game", h.createGame)
	mux.HandleFunc("GET /v1/games", h.listGames)
	mux.HandleFunc("GET /v1/game/{id}", h.getGame)
	mux.HandleFunc("DELETE /v1/game/{id}", h.deleteGame)
	mux.HandleFunc("GET /v1/game/{id}/players", h.listPlayers)
	mux.HandleFunc("GET /v1/game/{id}/history", h.gameHistory)
	mux.HandleFunc("POST /v1/game/{id}/roll_initiative", h.rollInitiative)
	mux.HandleFunc("POST /v1/game/{id}/ai_turn", h.aiTurn)
	mux.HandleFunc("POST /v1/game/{id}/player_turn", h.playerTurn)

	mux.HandleFunc("POST /v1/player", h.createPlayer)
	mux.HandleFunc("GET /v1/player/{id}", h.getPlayer)
	mux.HandleFunc("DELETE /v1/player/{id}", h.deletePlayer)

	return mux
}

func (h *Handler) createScenario(w http.ResponseWriter, r *http.Request) {
	var body createScenarioBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	roles := make([]scenario.Role, 0, len(body.Roles))
	for _, role := range body.Roles {
		roles = append(roles, scenario.Role{Name: role.Name, Description: role.Description, Stats: role.Stats})
	}
	created, err := h.engine.CreateScenario(r.Context(), scenario.CreateInput{
		Name:               body.Name,
		Description:        body.Description,
		Objectives:         body.Objectives,
		Mode:               scenario.Mode(body.Mode),
		MaxPlayers:         body.MaxPlayers,
		Context:            body.Context,
		Roles:              roles,
		MaxSuccessfulTurns: body.MaxSuccessfulTurns,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScenarioBody(created))
}

func (h *Handler) listScenarios(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.ListScenarios(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	bodies := make([]scenarioBody, 0, len(records))
	for _, record := range records {
		bodies = append(bodies, toScenarioBody(record))
	}
	writeJSON(w, http.StatusOK, bodies)
}

func (h *Handler) getScenario(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.GetScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioBody(record))
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var body createGameBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.engine.CreateGame(r.Context(), body.ScenarioID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameBody(created))
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.ListGames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	bodies := make([]gameBody, 0, len(records))
	for _, record := range records {
		bodies = append(bodies, toGameBody(record))
	}
	writeJSON(w, http.StatusOK, bodies)
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameBody(record))
}

func (h *Handler) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPlayers(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.ListPlayers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerBodies(records))
}

func (h *Handler) gameHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	bodies := make([]historyEntryBody, 0, len(entries))
	for _, entry := range entries {
		bodies = append(bodies, toHistoryBody(entry))
	}
	writeJSON(w, http.StatusOK, bodies)
}

func (h *Handler) rollInitiative(w http.ResponseWriter, r *http.Request) {
	players, err := h.engine.RollInitiative(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerBodies(players))
}

func (h *Handler) aiTurn(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.AITurn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameBody(record))
}

func (h *Handler) playerTurn(w http.ResponseWriter, r *http.Request) {
	var body playerTurnBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	record, err := h.engine.PlayerTurn(r.Context(), r.PathValue("id"), body.OptionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameBody(record))
}

func (h *Handler) createPlayer(w http.ResponseWriter, r *http.Request) {
	var body createPlayerBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	joined, err := h.engine.JoinGame(r.Context(), player.CreateInput{
		GameID:      body.GameID,
		DisplayName: body.DisplayName,
		Role:        body.Role,
		Stats:       body.Stats,
		HP:          body.HP,
		MP:          body.MP,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerBody(joined))
}

func (h *Handler) getPlayer(w http.ResponseWriter, r *http.Request) {
	record, err := h.engine.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerBody(record))
}

func (h *Handler) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemovePlayer(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
