// Package narrator defines the chat boundary to the narration collaborator
// and the contract its output must satisfy before entering history.
package narrator

import "context"

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one element of the transcript sent to the narrator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat-style invocation of the narrator.
type Request struct {
	Messages []Message
	// ForceJSON asks the provider to constrain output to a JSON object.
	// Providers that cannot enforce this ignore it; the recovery ladder
	// handles unconstrained output either way.
	ForceJSON bool
}

// Client is a narration provider. Implementations wrap one upstream model
// API and return its raw text response.
type Client interface {
	Chat(ctx context.Context, req Request) (string, error)
}
