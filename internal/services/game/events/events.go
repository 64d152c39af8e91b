// Package events publishes turn lifecycle notifications over NATS so
// spectator UIs and driver scripts can follow a session without polling.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects carrying game lifecycle events.
const (
	SubjectTurnCompleted    = "fableforge.game.turn"
	SubjectInitiativeRolled = "fableforge.game.initiative"
	SubjectGameCreated      = "fableforge.game.created"
	SubjectGameDeleted      = "fableforge.game.deleted"
)

// TurnEvent describes one completed turn of a game.
type TurnEvent struct {
	GameID    string    `json:"game_id"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase"`
	Actor     string    `json:"actor"`
	PlayerID  string    `json:"player_id,omitempty"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// GameEvent describes a session lifecycle change.
type GameEvent struct {
	GameID    string    `json:"game_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits game events to a NATS connection.
//
// A nil Publisher is valid and drops every event, so callers can wire
// messaging in optionally without branching at each publish site.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials a NATS server and returns a publisher over it.
func Connect(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

// TurnCompleted publishes a completed turn.
func (p *Publisher) TurnCompleted(event TurnEvent) error {
	return p.publish(SubjectTurnCompleted, event)
}

// InitiativeRolled publishes an initiative resolution.
func (p *Publisher) InitiativeRolled(event GameEvent) error {
	return p.publish(SubjectInitiativeRolled, event)
}

// GameCreated publishes a session creation.
func (p *Publisher) GameCreated(event GameEvent) error {
	return p.publish(SubjectGameCreated, event)
}

// GameDeleted publishes a session removal.
func (p *Publisher) GameDeleted(event GameEvent) error {
	return p.publish(SubjectGameDeleted, event)
}

func (p *Publisher) publish(subject string, payload any) error {
	if p == nil || p.conn == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
