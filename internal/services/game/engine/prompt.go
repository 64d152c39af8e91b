package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fableforge/fableforge/internal/services/game/domain/game"
	"github.com/fableforge/fableforge/internal/services/game/domain/history"
	"github.com/fableforge/fableforge/internal/services/game/domain/player"
	"github.com/fableforge/fableforge/internal/services/game/domain/scenario"
	"github.com/fableforge/fableforge/internal/services/game/narrator"
)

// responseContract is appended to every prompt that expects a structured
// narrator reply.
const responseContract = `Respond with a single JSON object and nothing else, with exactly these keys:
{"narration": "1-3 sentences of narration", "options": [{"id": 1, "description": "short action description", "success_rate": 0.0, "health_point_change": 0.0, "mana_point_change": 0.0, "related_stat": "stat name"}]}
Provide two to four options. success_rate is between 0 and 1; health_point_change and mana_point_change are between -1 and 1.`

// buildPrompt assembles the ordered message transcript for the narrator.
//
// Turn 0 produces a single opening message; later turns replay the full
// history and append continuation instructions to the last message.
func buildPrompt(sc scenario.Scenario, g game.Game, players []player.Player, entries []history.Entry) []narrator.Message {
	if g.Turn == 0 {
		return []narrator.Message{{Role: narrator.RoleUser, Content: openingMessage(sc, players)}}
	}
	return continuationMessages(sc, g, entries)
}

func openingMessage(sc scenario.Scenario, players []player.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the game master of %q.\n", sc.Name)
	if sc.Context != "" {
		fmt.Fprintf(&b, "Setting: %s\n", sc.Context)
	}
	if sc.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", sc.Description)
	}
	fmt.Fprintf(&b, "Objective: %s\n", sc.Objectives)
	b.WriteString("Players, in turn order:\n")
	for _, p := range players {
		fmt.Fprintf(&b, "- %s (%s) HP:%.0f MP:%.0f Initiative:%d Stats:%s\n",
			p.DisplayName, p.Role, p.HP, p.MP, p.Initiative, formatStats(p.Stats))
	}
	if len(players) > 0 {
		fmt.Fprintf(&b, "\nWelcome the players, describe the opening scene, and indicate that it is %s's turn to act.\n", players[0].DisplayName)
	}
	b.WriteString("\n")
	b.WriteString(responseContract)
	return b.String()
}

func continuationMessages(sc scenario.Scenario, g game.Game, entries []history.Entry) []narrator.Message {
	messages := make([]narrator.Message, 0, len(entries))
	for _, entry := range entries {
		role := narrator.RoleUser
		if entry.Actor == history.ActorAssistant {
			role = narrator.RoleAssistant
		}
		messages = append(messages, narrator.Message{Role: role, Content: entry.Result.Narration})
	}

	var b strings.Builder
	b.WriteString("Continue the story from the players' last action.\n")
	fmt.Fprintf(&b, "Objective: %s\n", sc.Objectives)
	fmt.Fprintf(&b, "The players are %s.\n", progressionTier(g.Progress()))
	b.WriteString(responseContract)

	if len(messages) > 0 && messages[len(messages)-1].Role == narrator.RoleUser {
		messages[len(messages)-1].Content += "\n\n" + b.String()
	} else {
		messages = append(messages, narrator.Message{Role: narrator.RoleUser, Content: b.String()})
	}
	return messages
}

// progressionTier buckets objective progress into five qualitative hints.
func progressionTier(progress float64) string {
	switch {
	case progress >= 1:
		return "at the objective; bring the story to its conclusion"
	case progress >= 0.75:
		return "closing in on the objective"
	case progress >= 0.5:
		return "about halfway to the objective"
	case progress >= 0.25:
		return "making early progress toward the objective"
	default:
		return "far from the objective"
	}
}

func formatStats(stats map[string]int) string {
	if len(stats) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	// Deterministic ordering keeps prompts reproducible.
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("{")
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%d", key, stats[key])
	}
	b.WriteString("}")
	return b.String()
}
