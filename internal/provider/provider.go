// Package provider abstracts the language model backends and the
// fallback chain across them.
package provider

import "context"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one history entry sent to a model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single model invocation
type Request struct {
	// System is the full system prompt (persona, workspace context,
	// memory context, action instructions)
	System string `json:"system,omitempty"`

	// History is the recent conversation, oldest first
	History []Message `json:"history,omitempty"`

	// Input is the current user message
	Input string `json:"input"`
}

// Provider is implemented by each model backend
type Provider interface {
	// ID returns the provider identifier (e.g. "anthropic", "openai")
	ID() string

	// Respond sends one request to the named model and returns its text
	Respond(ctx context.Context, model string, req *Request) (string, error)
}
