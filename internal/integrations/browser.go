package integrations

import (
	"context"
	"fmt"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/browser"
)

// BrowserApp drives a remote-debugged browser for scripted page
// interaction. Every invocation opens a fresh session against the
// control endpoint and tears it down when done.
type BrowserApp struct {
	controlURL string
}

// NewBrowserApp creates the browser integration
func NewBrowserApp(controlURL string) *BrowserApp {
	return &BrowserApp{controlURL: controlURL}
}

// App returns the app identifier
func (b *BrowserApp) App() string {
	return "browser"
}

// Exec performs one browser action: navigate, evaluate or text
func (b *BrowserApp) Exec(ctx context.Context, action string, params map[string]any) (any, error) {
	session, err := browser.Open(ctx, b.controlURL)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	switch action {
	case "navigate":
		url, _ := params["url"].(string)
		if url == "" {
			return nil, fmt.Errorf("navigate requires a url param")
		}
		if err := session.Navigate(ctx, url); err != nil {
			return nil, err
		}
		return map[string]any{"navigated": url}, nil

	case "evaluate":
		script, _ := params["script"].(string)
		if script == "" {
			script, _ = params["expression"].(string)
		}
		if script == "" {
			return nil, fmt.Errorf("evaluate requires a script param")
		}
		return session.Evaluate(ctx, script)

	case "text":
		if url, _ := params["url"].(string); url != "" {
			if err := session.Navigate(ctx, url); err != nil {
				return nil, err
			}
		}
		return session.PageText(ctx)

	default:
		return nil, fmt.Errorf("unknown browser action: %s", action)
	}
}
