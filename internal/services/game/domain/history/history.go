// Package history models the append-only narrative log of a game.
//
// Entries are immutable once appended. The last entry by creation order is
// the sole source of the currently pending option set.
package history

import (
	"encoding/json"
	"time"
)

// ActorRole distinguishes narrator entries from player entries.
type ActorRole string

const (
	// ActorUser marks player or environment authored entries.
	ActorUser ActorRole = "USER"
	// ActorAssistant marks narrator authored entries.
	ActorAssistant ActorRole = "ASSISTANT"
)

// Option is a narrator-proposed action a player may choose. It is a value
// object embedded in a Result, never persisted standalone.
type Option struct {
	ID                int     `json:"id"`
	Description       string  `json:"description"`
	SuccessRate       float64 `json:"success_rate"`
	HealthPointChange float64 `json:"health_point_change"`
	ManaPointChange   float64 `json:"mana_point_change"`
	RelatedStat       string  `json:"related_stat"`
}

// Clamp bounds the option's numeric fields to their declared ranges.
func (o Option) Clamp() Option {
	o.SuccessRate = clamp(o.SuccessRate, 0, 1)
	o.HealthPointChange = clamp(o.HealthPointChange, -1, 1)
	o.ManaPointChange = clamp(o.ManaPointChange, -1, 1)
	return o
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Result is the payload recorded for a turn: what was narrated and which
// options are now pending.
type Result struct {
	Narration string   `json:"narration"`
	Options   []Option `json:"options"`
}

// Find returns the option with the given id.
func (r Result) Find(optionID int) (Option, bool) {
	for _, opt := range r.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// Entry is one immutable record of the narrative log.
type Entry struct {
	ID        string
	GameID    string
	PlayerID  string // empty for narrator-authored, pure-environment entries
	Timestamp time.Time
	Actor     ActorRole
	Success   bool
	Result    Result
}

// EncodeResult serializes a result payload for persistence.
func EncodeResult(result Result) ([]byte, error) {
	if result.Options == nil {
		result.Options = []Option{}
	}
	return json.Marshal(result)
}

// DecodeResult restores a persisted result payload.
func DecodeResult(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, err
	}
	if result.Options == nil {
		result.Options = []Option{}
	}
	return result, nil
}
