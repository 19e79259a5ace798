// Package console implements a local stdin/stdout channel adapter,
// mainly useful for development and first-run setup.
package console

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels"
)

// SenderID is the fixed sender identity for the local console user
const SenderID = "local"

// Adapter implements the Channel interface over stdin/stdout
type Adapter struct {
	mu      sync.RWMutex
	handler func(channels.InboundMessage)
	cancel  context.CancelFunc
}

// New creates a new console adapter
func New() *Adapter {
	return &Adapter{}
}

// ID returns the channel identifier
func (a *Adapter) ID() string {
	return "console"
}

// Connect starts reading lines from stdin
func (a *Adapter) Connect(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	go a.readLoop(ctx)
	return nil
}

func (a *Adapter) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		a.mu.RLock()
		handler := a.handler
		a.mu.RUnlock()
		if handler != nil {
			handler(channels.InboundMessage{
				Channel:  a.ID(),
				SenderID: SenderID,
				Text:     text,
			})
		}
	}
}

// Disconnect stops the read loop
func (a *Adapter) Disconnect() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	return nil
}

// Send prints the reply to stdout
func (a *Adapter) Send(_ context.Context, msg channels.OutboundMessage) error {
	_, err := fmt.Fprintf(os.Stdout, "%s\n", msg.Text)
	return err
}

// SetHandler sets the callback for incoming messages
func (a *Adapter) SetHandler(fn func(channels.InboundMessage)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = fn
}
