package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testScenario(id, name string) scenario.Scenario {
	return scenario.Scenario{
		ID:          id,
		Name:        name,
		Description: "a haunted keep",
		Objectives:  "break the curse",
		Mode:        scenario.ModePvE,
		MaxPlayers:  4,
		Context:     "gothic fantasy",
		Roles: []scenario.Role{
			{Name: "knight", Description: "front line", Stats: map[string]int{"strength": 14, "dexterity": 11}},
			{Name: "sage", Stats: map[string]int{"intelligence": 15}},
		},
		MaxSuccessfulTurns: 10,
		CreatedAt:          time.Now(),
	}
}

func TestStoreScenarioRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testScenario("sc1", "Haunted Keep")
	if err := store.CreateScenario(ctx, want); err != nil {
		t.Fatalf("CreateScenario() error = %v", err)
	}

	got, err := store.GetScenario(ctx, "sc1")
	if err != nil {
		t.Fatalf("GetScenario() error = %v", err)
	}
	if got.Name != want.Name || got.Mode != want.Mode || got.MaxPlayers != want.MaxPlayers {
		t.Fatalf("GetScenario() = %+v, want %+v", got, want)
	}
	if len(got.Roles) != 2 || got.Roles[0].Name != "knight" || got.Roles[1].Name != "sage" {
		t.Fatalf("GetScenario() roles = %+v", got.Roles)
	}
	if got.Roles[0].Stats["strength"] != 14 {
		t.Fatalf("GetScenario() role stats = %+v", got.Roles[0].Stats)
	}

	byName, err := store.GetScenarioByName(ctx, "Haunted Keep")
	if err != nil {
		t.Fatalf("GetScenarioByName() error = %v", err)
	}
	if byName.ID != "sc1" {
		t.Fatalf("GetScenarioByName() id = %q, want sc1", byName.ID)
	}
}

func TestStoreScenarioNameTaken(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateScenario(ctx, testScenario("sc1", "Same Name")); err != nil {
		t.Fatalf("CreateScenario() error = %v", err)
	}
	err := store.CreateScenario(ctx, testScenario("sc2", "Same Name"))
	if apperrors.CodeOf(err) != apperrors.CodeScenarioNameTaken {
		t.Fatalf("CreateScenario() duplicate name error = %v", err)
	}
}

func TestStoreScenarioNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetScenario(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetScenario() error = %v, want ErrNotFound", err)
	}
}

func TestStoreGameLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateScenario(ctx, testScenario("sc1", "Keep")); err != nil {
		t.Fatalf("CreateScenario() error = %v", err)
	}

	record := game.New("g1", "sc1", 10, time.Now())
	if err := store.CreateGame(ctx, record); err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}

	got, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGame() error = %v", err)
	}
	if got.Phase != game.PhaseAI || got.Turn != 0 || !got.Active {
		t.Fatalf("GetGame() = %+v", got)
	}
	if got.CurrentPlayerID != "" {
		t.Fatalf("GetGame() current player = %q, want empty", got.CurrentPlayerID)
	}

	got.Turn = 1
	got.Phase = game.PhasePlayer
	got.CurrentPlayerID = "p1"
	got.SuccessfulTurns = 1
	got.UpdatedAt = time.Now()
	if err := store.UpdateGame(ctx, got); err != nil {
		t.Fatalf("UpdateGame() error = %v", err)
	}

	updated, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGame() after update error = %v", err)
	}
	if updated.Phase != game.PhasePlayer || updated.CurrentPlayerID != "p1" || updated.SuccessfulTurns != 1 {
		t.Fatalf("GetGame() after update = %+v", updated)
	}

	games, err := store.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("ListGames() len = %d, want 1", len(games))
	}

	if err := store.DeleteGame(ctx, "g1"); err != nil {
		t.Fatalf("DeleteGame() error = %v", err)
	}
	if _, err := store.GetGame(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetGame() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteGame(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteGame() twice error = %v, want ErrNotFound", err)
	}
}

func TestStoreUpdateMissingGame(t *testing.T) {
	store := openTestStore(t)

	err := store.UpdateGame(context.Background(), game.Game{ID: "missing", Phase: game.PhaseAI})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UpdateGame() error = %v, want ErrNotFound", err)
	}
}

func seedGame(t *testing.T, store *Store, gameID string) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateScenario(ctx, testScenario("sc-"+gameID, "Scenario "+gameID)); err != nil {
		t.Fatalf("CreateScenario() error = %v", err)
	}
	if err := store.CreateGame(ctx, game.New(gameID, "sc-"+gameID, 10, time.Now())); err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}
}

func testPlayer(id, gameID string, created time.Time) player.Player {
	return player.Player{
		ID:          id,
		GameID:      gameID,
		DisplayName: "Player " + id,
		Role:        "knight",
		Stats:       map[string]int{"dexterity": 12},
		HP:          100,
		MP:          100,
		Alive:       true,
		CreatedAt:   created,
	}
}

func TestStorePlayerOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedGame(t, store, "g1")

	base := time.Now()
	for i, id := range []string{"pa", "pb", "pc"} {
		if err := store.CreatePlayer(ctx, testPlayer(id, "g1", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("CreatePlayer(%s) error = %v", id, err)
		}
	}

	// Before initiative every turn order is zero, so creation order holds.
	players, err := store.ListPlayers(ctx, "g1")
	if err != nil {
		t.Fatalf("ListPlayers() error = %v", err)
	}
	if got := playerIDs(players); got[0] != "pa" || got[1] != "pb" || got[2] != "pc" {
		t.Fatalf("ListPlayers() pre-initiative order = %v", got)
	}

	// Assign turn orders out of creation order.
	orders := map[string]int{"pa": 3, "pb": 1, "pc": 2}
	for _, p := range players {
		p.Order = orders[p.ID]
		p.Initiative = 20 - p.Order
		if err := store.UpdatePlayer(ctx, p); err != nil {
			t.Fatalf("UpdatePlayer(%s) error = %v", p.ID, err)
		}
	}

	players, err = store.ListPlayers(ctx, "g1")
	if err != nil {
		t.Fatalf("ListPlayers() error = %v", err)
	}
	if got := playerIDs(players); got[0] != "pb" || got[1] != "pc" || got[2] != "pa" {
		t.Fatalf("ListPlayers() post-initiative order = %v", got)
	}
}

func playerIDs(players []player.Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func TestStorePlayerRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedGame(t, store, "g1")

	record := testPlayer("p1", "g1", time.Now())
	record.HP = 73.5
	if err := store.CreatePlayer(ctx, record); err != nil {
		t.Fatalf("CreatePlayer() error = %v", err)
	}

	got, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlayer() error = %v", err)
	}
	if got.DisplayName != record.DisplayName || got.HP != 73.5 || !got.Alive {
		t.Fatalf("GetPlayer() = %+v", got)
	}
	if got.Stats["dexterity"] != 12 {
		t.Fatalf("GetPlayer() stats = %+v", got.Stats)
	}

	got.HP = 0
	got.Alive = false
	if err := store.UpdatePlayer(ctx, got); err != nil {
		t.Fatalf("UpdatePlayer() error = %v", err)
	}
	updated, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlayer() after update error = %v", err)
	}
	if updated.Alive || updated.HP != 0 {
		t.Fatalf("GetPlayer() after update = %+v", updated)
	}

	if err := store.DeletePlayer(ctx, "p1"); err != nil {
		t.Fatalf("DeletePlayer() error = %v", err)
	}
	if _, err := store.GetPlayer(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetPlayer() after delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreHistoryAppendOnly(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedGame(t, store, "g1")

	// Identical timestamps; ordering must come from append sequence.
	now := time.Now()
	entries := []history.Entry{
		{
			ID:        "h1",
			GameID:    "g1",
			Actor:     history.ActorAssistant,
			Timestamp: now,
			Result: history.Result{
				Narration: "The gate creaks open.",
				Options: []history.Option{
					{ID: 1, Description: "Enter quietly", SuccessRate: 0.7, RelatedStat: "dexterity"},
					{ID: 2, Description: "Charge in", SuccessRate: 0.4, HealthPointChange: -0.1},
				},
			},
		},
		{
			ID:        "h2",
			GameID:    "g1",
			PlayerID:  "p1",
			Actor:     history.ActorUser,
			Success:   true,
			Timestamp: now,
			Result:    history.Result{Narration: "You slip through the shadows."},
		},
	}
	for _, entry := range entries {
		if err := store.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("AppendHistory(%s) error = %v", entry.ID, err)
		}
	}

	list, err := store.ListHistory(ctx, "g1")
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "h1" || list[1].ID != "h2" {
		t.Fatalf("ListHistory() order = %+v", list)
	}
	if len(list[0].Result.Options) != 2 || list[0].Result.Options[0].RelatedStat != "dexterity" {
		t.Fatalf("ListHistory() options = %+v", list[0].Result.Options)
	}
	if list[1].Result.Options == nil {
		t.Fatal("ListHistory() options decoded as nil, want empty slice")
	}
	if !list[1].Success || list[1].PlayerID != "p1" || list[1].Actor != history.ActorUser {
		t.Fatalf("ListHistory() player entry = %+v", list[1])
	}

	latest, err := store.LatestHistory(ctx, "g1")
	if err != nil {
		t.Fatalf("LatestHistory() error = %v", err)
	}
	if latest.ID != "h2" {
		t.Fatalf("LatestHistory() id = %q, want h2", latest.ID)
	}
}

func TestStoreLatestHistoryEmpty(t *testing.T) {
	store := openTestStore(t)
	seedGame(t, store, "g1")

	_, err := store.LatestHistory(context.Background(), "g1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("LatestHistory() error = %v, want ErrNotFound", err)
	}
}

func TestStoreDeleteGameCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedGame(t, store, "g1")

	if err := store.CreatePlayer(ctx, testPlayer("p1", "g1", time.Now())); err != nil {
		t.Fatalf("CreatePlayer() error = %v", err)
	}
	if err := store.AppendHistory(ctx, history.Entry{
		ID: "h1", GameID: "g1", Actor: history.ActorAssistant, Timestamp: time.Now(),
		Result: history.Result{Narration: "opening"},
	}); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}

	if err := store.DeleteGame(ctx, "g1"); err != nil {
		t.Fatalf("DeleteGame() error = %v", err)
	}

	if _, err := store.GetPlayer(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetPlayer() after cascade error = %v, want ErrNotFound", err)
	}
	list, err := store.ListHistory(ctx, "g1")
	if err != nil {
		t.Fatalf("ListHistory() after cascade error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ListHistory() after cascade len = %d, want 0", len(list))
	}
}
