// Package engine implements the turn orchestration core: initiative
// resolution, the AI/PLAYER phase state machine, option outcome resolution,
// and the append-only narrative history around them.
package engine

import (
	"fmt"
	"time"

	"github.com/fableforge/fableforge/internal/platform/id"
	"github.com/fableforge/fableforge/internal/services/game/domain/dice"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/narrator"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// Engine sequences narrator and player turns over persisted game state.
//
// All mutating operations on one game are serialized through a per-game
// lock; operations on distinct games run independently.
type Engine struct {
	store    storage.Store
	narrator narrator.Client
	events   *events.Publisher
	roller   dice.Roller
	locks    *lockRegistry
	now      func() time.Time
	newID    func() (string, error)
}

// Config wires the engine's collaborators. Store and Narrator are required;
// the rest default to production implementations.
type Config struct {
	Store    storage.Store
	Narrator narrator.Client
	// Events may be nil; turn notifications are then dropped.
	Events *events.Publisher
	// Roller overrides the dice source, stubbed in tests for exact draws.
	Roller dice.Roller
	Now    func() time.Time
	NewID  func() (string, error)
}

// New builds an engine from its collaborators.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}
	if cfg.Narrator == nil {
		return nil, fmt.Errorf("engine requires a narrator client")
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.SeededRoller{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = id.NewID
	}
	return &Engine{
		store:    cfg.Store,
		narrator: cfg.Narrator,
		events:   cfg.Events,
		roller:   cfg.Roller,
		locks:    newLockRegistry(),
		now:      cfg.Now,
		newID:    cfg.NewID,
	}, nil
}
