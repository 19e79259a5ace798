// Package webhook implements an HTTP channel adapter. Inbound messages
// arrive as JSON POSTs; outbound replies are POSTed to a callback URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
)

// Config holds the webhook adapter settings
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8787"
	Listen string
	// CallbackURL receives outbound replies. Empty disables delivery;
	// inbound messages are still accepted and processed.
	CallbackURL string
}

// Adapter implements the Channel interface over HTTP
type Adapter struct {
	config Config

	mu      sync.RWMutex
	handler func(channels.InboundMessage)
	server  *http.Server
	client  *http.Client
}

// New creates a new webhook adapter
func New(cfg Config) *Adapter {
	return &Adapter{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ID returns the channel identifier
func (a *Adapter) ID() string {
	return "webhook"
}

// Connect starts the HTTP listener
func (a *Adapter) Connect(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/inbound", a.handleInbound)

	server := &http.Server{
		Addr:              a.config.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("[webhook] server error: %v", err)
		}
	}()

	logging.Infof("[webhook] listening on %s", a.config.Listen)
	return nil
}

func (a *Adapter) handleInbound(w http.ResponseWriter, r *http.Request) {
	var msg channels.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if msg.SenderID == "" || msg.Text == "" {
		http.Error(w, "sender_id and text are required", http.StatusBadRequest)
		return
	}
	msg.Channel = a.ID()

	a.mu.RLock()
	handler := a.handler
	a.mu.RUnlock()
	if handler == nil {
		http.Error(w, "channel not ready", http.StatusServiceUnavailable)
		return
	}

	// The turn runs asynchronously; the reply goes out via the callback
	// URL, not this response.
	go handler(msg)
	w.WriteHeader(http.StatusAccepted)
}

// Disconnect shuts down the HTTP listener
func (a *Adapter) Disconnect() error {
	a.mu.Lock()
	server := a.server
	a.server = nil
	a.mu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Send POSTs the reply to the configured callback URL
func (a *Adapter) Send(ctx context.Context, msg channels.OutboundMessage) error {
	if a.config.CallbackURL == "" {
		logging.Warnf("[webhook] no callback URL configured, dropping reply to %s", msg.SenderID)
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}

// SetHandler sets the callback for incoming messages
func (a *Adapter) SetHandler(fn func(channels.InboundMessage)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = fn
}
