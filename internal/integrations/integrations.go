// Package integrations routes third-party app calls requested by the
// model to their adapters.
package integrations

import (
	"context"
	"fmt"
	"sync"
)

// Request is one integration invocation
type Request struct {
	App    string         `json:"app"`
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Dispatcher executes integration requests
type Dispatcher interface {
	Exec(ctx context.Context, req Request) (any, error)
}

// Handler is one app's adapter
type Handler interface {
	// App returns the app identifier, e.g. "browser"
	App() string

	// Exec performs one action for this app
	Exec(ctx context.Context, action string, params map[string]any) (any, error)
}

// Registry dispatches requests to registered app handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds an app handler
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.App()] = h
}

// Exec routes a request to its app's handler
func (r *Registry) Exec(ctx context.Context, req Request) (any, error) {
	r.mu.RLock()
	h, ok := r.handlers[req.App]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown integration app: %s", req.App)
	}
	return h.Exec(ctx, req.Action, req.Params)
}
