package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
)

// Chain tries a fixed list of "provider/model" entries in order and
// returns the first success. When every entry fails, the last error
// surfaces.
type Chain struct {
	providers map[string]Provider
	models    []string
}

// NewChain builds a chain over the given providers and fallback list
func NewChain(providers []Provider, models []string) *Chain {
	byID := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}
	return &Chain{providers: byID, models: models}
}

// Respond runs the request down the fallback list
func (c *Chain) Respond(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, entry := range c.models {
		providerID, model, ok := strings.Cut(entry, "/")
		if !ok || model == "" {
			logging.Warnf("[provider] skipping malformed model entry %q", entry)
			continue
		}
		p, found := c.providers[providerID]
		if !found {
			logging.Warnf("[provider] no provider loaded for %q", entry)
			continue
		}

		out, err := p.Respond(ctx, model, req)
		if err != nil {
			logging.Warnf("[provider] %s failed, trying next: %v", entry, err)
			lastErr = err
			continue
		}
		return out, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no usable model configured")
	}
	return "", lastErr
}
