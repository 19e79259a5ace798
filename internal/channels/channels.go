// Package channels defines the adapter interface between external
// messaging surfaces and the turn engine.
package channels

import "context"

// InboundMessage is one message arriving from a channel
type InboundMessage struct {
	Channel    string `json:"channel"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Text       string `json:"text"`
}

// OutboundMessage is one reply to deliver through a channel
type OutboundMessage struct {
	Channel  string `json:"channel"`
	SenderID string `json:"sender_id"`
	Text     string `json:"text"`
}

// Channel is implemented by every channel adapter
type Channel interface {
	// ID returns the channel identifier, e.g. "console"
	ID() string

	// Connect starts the adapter. It returns once the adapter is
	// receiving; delivery of inbound messages happens on the handler.
	Connect(ctx context.Context) error

	// Disconnect stops the adapter
	Disconnect() error

	// Send delivers an outbound message
	Send(ctx context.Context, msg OutboundMessage) error

	// SetHandler sets the callback for incoming messages
	SetHandler(fn func(InboundMessage))
}
