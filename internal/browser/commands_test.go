package browser

import (
	"context"
	"strings"
	"testing"
)

func TestNavigate(t *testing.T) {
	fb := newFakeBrowser(t, func(id int64, method string) (any, bool) {
		if method == "Page.navigate" {
			return map[string]any{"id": id, "result": map[string]string{"frameId": "F1"}}, true
		}
		return echoResponder(id, method)
	})
	s, err := Open(context.Background(), fb.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Navigate(context.Background(), "https://example.com"); err != nil {
		t.Errorf("Navigate: %v", err)
	}
}

func TestNavigateErrorText(t *testing.T) {
	fb := newFakeBrowser(t, func(id int64, method string) (any, bool) {
		return map[string]any{"id": id, "result": map[string]string{"errorText": "net::ERR_NAME_NOT_RESOLVED"}}, true
	})
	s, err := Open(context.Background(), fb.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.Navigate(context.Background(), "https://nope.invalid")
	if err == nil || !strings.Contains(err.Error(), "ERR_NAME_NOT_RESOLVED") {
		t.Errorf("err = %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name   string
		result map[string]any
		want   string
	}{
		{
			"string result unquoted",
			map[string]any{"result": map[string]any{"type": "string", "value": "page title"}},
			"page title",
		},
		{
			"number stays json",
			map[string]any{"result": map[string]any{"type": "number", "value": 42}},
			"42",
		},
		{
			"undefined result",
			map[string]any{"result": map[string]any{"type": "undefined"}},
			"",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := newFakeBrowser(t, func(id int64, method string) (any, bool) {
				return map[string]any{"id": id, "result": tc.result}, true
			})
			s, err := Open(context.Background(), fb.server.URL)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			got, err := s.Evaluate(context.Background(), "whatever()")
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Evaluate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvaluateException(t *testing.T) {
	fb := newFakeBrowser(t, func(id int64, method string) (any, bool) {
		return map[string]any{"id": id, "result": map[string]any{
			"result":           map[string]any{"type": "object"},
			"exceptionDetails": map[string]any{"text": "Uncaught ReferenceError"},
		}}, true
	})
	s, err := Open(context.Background(), fb.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Evaluate(context.Background(), "boom()")
	if err == nil || !strings.Contains(err.Error(), "ReferenceError") {
		t.Errorf("err = %v", err)
	}
}
