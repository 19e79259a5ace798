package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// Navigate loads a URL in the session's target
func (s *Session) Navigate(ctx context.Context, url string) error {
	result, err := s.Call(ctx, "Page.navigate", map[string]any{"url": url})
	if err != nil {
		return err
	}

	var nav struct {
		ErrorText string `json:"errorText"`
	}
	if err := json.Unmarshal(result, &nav); err == nil && nav.ErrorText != "" {
		return fmt.Errorf("navigation failed: %s", nav.ErrorText)
	}
	return nil
}

// Evaluate runs a script expression in the page and returns its value
// serialized as a string
func (s *Session) Evaluate(ctx context.Context, expression string) (string, error) {
	result, err := s.Call(ctx, "Runtime.evaluate", map[string]any{
		"expression":    expression,
		"returnByValue": true,
	})
	if err != nil {
		return "", err
	}

	var eval struct {
		Result struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(result, &eval); err != nil {
		return "", fmt.Errorf("failed to decode evaluate result: %w", err)
	}
	if eval.ExceptionDetails != nil {
		return "", fmt.Errorf("script threw: %s", eval.ExceptionDetails.Text)
	}
	if eval.Result.Value == nil {
		return "", nil
	}

	// Plain strings come back JSON-quoted; everything else stays as its
	// JSON rendering.
	if eval.Result.Type == "string" {
		var s string
		if err := json.Unmarshal(eval.Result.Value, &s); err == nil {
			return s, nil
		}
	}
	return string(eval.Result.Value), nil
}

// PageText returns the page's visible text content
func (s *Session) PageText(ctx context.Context) (string, error) {
	return s.Evaluate(ctx, "document.body ? document.body.innerText : ''")
}
