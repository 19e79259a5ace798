package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/channels"
)

func postInbound(a *Adapter, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/inbound", strings.NewReader(body))
	w := httptest.NewRecorder()
	a.handleInbound(w, req)
	return w
}

func TestHandleInbound(t *testing.T) {
	a := New(Config{})

	var mu sync.Mutex
	var got []channels.InboundMessage
	done := make(chan struct{}, 1)
	a.SetHandler(func(msg channels.InboundMessage) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
		done <- struct{}{}
	})

	w := postInbound(a, `{"sender_id": "u1", "sender_name": "Dana", "text": "hello"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("messages = %v", got)
	}
	if got[0].Channel != "webhook" || got[0].SenderID != "u1" || got[0].Text != "hello" {
		t.Errorf("message = %+v", got[0])
	}
}

func TestHandleInboundRejectsBadRequests(t *testing.T) {
	a := New(Config{})
	a.SetHandler(func(channels.InboundMessage) {})

	cases := []struct {
		name string
		body string
	}{
		{"not json", "hello"},
		{"missing sender", `{"text": "hi"}`},
		{"missing text", `{"sender_id": "u1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := postInbound(a, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d", w.Code)
			}
		})
	}
}

func TestHandleInboundWithoutHandler(t *testing.T) {
	a := New(Config{})
	if w := postInbound(a, `{"sender_id": "u1", "text": "hi"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSendPostsToCallback(t *testing.T) {
	var mu sync.Mutex
	var received []channels.OutboundMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg channels.OutboundMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("bad callback body: %v", err)
		}
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
	}))
	defer srv.Close()

	a := New(Config{CallbackURL: srv.URL})
	err := a.Send(context.Background(), channels.OutboundMessage{
		Channel: "webhook", SenderID: "u1", Text: "reply",
	})
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0].Text != "reply" {
		t.Errorf("received = %+v", received)
	}
}

func TestSendWithoutCallbackDropsQuietly(t *testing.T) {
	a := New(Config{})
	if err := a.Send(context.Background(), channels.OutboundMessage{SenderID: "u1", Text: "x"}); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestSendCallbackFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := New(Config{CallbackURL: srv.URL})
	err := a.Send(context.Background(), channels.OutboundMessage{SenderID: "u1", Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v", err)
	}
}
