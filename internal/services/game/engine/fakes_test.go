package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
	"github.com/fableforge/fableforge/internal/services/game/narrator"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// fakeStore is an in-memory storage.Store mirroring the SQLite ordering
// semantics the engine relies on.
type fakeStore struct {
	scenarios map[string]scenario.Scenario
	games     map[string]game.Game
	players   map[string]player.Player
	history   []history.Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scenarios: map[string]scenario.Scenario{},
		games:     map[string]game.Game{},
		players:   map[string]player.Player{},
	}
}

func (s *fakeStore) CreateScenario(_ context.Context, record scenario.Scenario) error {
	s.scenarios[record.ID] = record
	return nil
}

func (s *fakeStore) GetScenario(_ context.Context, id string) (scenario.Scenario, error) {
	record, ok := s.scenarios[id]
	if !ok {
		return scenario.Scenario{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *fakeStore) GetScenarioByName(_ context.Context, name string) (scenario.Scenario, error) {
	for _, record := range s.scenarios {
		if record.Name == name {
			return record, nil
		}
	}
	return scenario.Scenario{}, storage.ErrNotFound
}

func (s *fakeStore) ListScenarios(_ context.Context) ([]scenario.Scenario, error) {
	records := make([]scenario.Scenario, 0, len(s.scenarios))
	for _, record := range s.scenarios {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (s *fakeStore) CreateGame(_ context.Context, record game.Game) error {
	s.games[record.ID] = record
	return nil
}

func (s *fakeStore) GetGame(_ context.Context, id string) (game.Game, error) {
	record, ok := s.games[id]
	if !ok {
		return game.Game{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *fakeStore) UpdateGame(_ context.Context, record game.Game) error {
	if _, ok := s.games[record.ID]; !ok {
		return storage.ErrNotFound
	}
	s.games[record.ID] = record
	return nil
}

func (s *fakeStore) DeleteGame(_ context.Context, id string) error {
	if _, ok := s.games[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.games, id)
	for pid, p := range s.players {
		if p.GameID == id {
			delete(s.players, pid)
		}
	}
	kept := s.history[:0]
	for _, entry := range s.history {
		if entry.GameID != id {
			kept = append(kept, entry)
		}
	}
	s.history = kept
	return nil
}

func (s *fakeStore) ListGames(_ context.Context) ([]game.Game, error) {
	records := make([]game.Game, 0, len(s.games))
	for _, record := range s.games {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (s *fakeStore) CreatePlayer(_ context.Context, record player.Player) error {
	s.players[record.ID] = record
	return nil
}

func (s *fakeStore) GetPlayer(_ context.Context, id string) (player.Player, error) {
	record, ok := s.players[id]
	if !ok {
		return player.Player{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *fakeStore) UpdatePlayer(_ context.Context, record player.Player) error {
	if _, ok := s.players[record.ID]; !ok {
		return storage.ErrNotFound
	}
	s.players[record.ID] = record
	return nil
}

func (s *fakeStore) DeletePlayer(_ context.Context, id string) error {
	if _, ok := s.players[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.players, id)
	return nil
}

func (s *fakeStore) ListPlayers(_ context.Context, gameID string) ([]player.Player, error) {
	var records []player.Player
	for _, record := range s.players {
		if record.GameID == gameID {
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Order != records[j].Order {
			return records[i].Order < records[j].Order
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (s *fakeStore) AppendHistory(_ context.Context, entry history.Entry) error {
	s.history = append(s.history, entry)
	return nil
}

func (s *fakeStore) ListHistory(_ context.Context, gameID string) ([]history.Entry, error) {
	var entries []history.Entry
	for _, entry := range s.history {
		if entry.GameID == gameID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *fakeStore) LatestHistory(_ context.Context, gameID string) (history.Entry, error) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].GameID == gameID {
			return s.history[i], nil
		}
	}
	return history.Entry{}, storage.ErrNotFound
}

func (s *fakeStore) Close() error { return nil }

// stubRoller replays a fixed sequence of draws.
type stubRoller struct {
	draws []int
	calls int
}

func (r *stubRoller) Roll(sides int) (int, error) {
	if r.calls >= len(r.draws) {
		return 0, fmt.Errorf("stub roller exhausted after %d draws", r.calls)
	}
	draw := r.draws[r.calls]
	r.calls++
	return draw, nil
}

// stubNarrator returns canned responses in order, or a fixed error.
type stubNarrator struct {
	responses []string
	err       error
	requests  []narrator.Request
}

func (n *stubNarrator) Chat(_ context.Context, req narrator.Request) (string, error) {
	n.requests = append(n.requests, req)
	if n.err != nil {
		return "", n.err
	}
	if len(n.responses) == 0 {
		return "", fmt.Errorf("stub narrator exhausted")
	}
	response := n.responses[0]
	if len(n.responses) > 1 {
		n.responses = n.responses[1:]
	}
	return response, nil
}

func newTestEngine(t interface{ Fatalf(string, ...any) }, store storage.Store, chat narrator.Client, roller *stubRoller) *Engine {
	counter := 0
	eng, err := New(Config{
		Store:    store,
		Narrator: chat,
		Roller:   roller,
		Now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() (string, error) {
			counter++
			return fmt.Sprintf("id-%04d", counter), nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng
}
