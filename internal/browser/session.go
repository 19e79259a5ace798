// Package browser implements a minimal remote-debugging client for a
// single browser target: JSON request/response correlation over a
// persistent websocket, plus the out-of-band control calls that open and
// release the target.
//
// One session is opened and torn down per invocation. That trades
// connection reuse for isolation: a wedged page never leaks into the
// next action.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
)

// CallTimeout bounds every command on the debug socket
const CallTimeout = 15 * time.Second

// Session is an open remote-debugging connection to one browser target
type Session struct {
	controlURL string
	targetID   string
	conn       *websocket.Conn
	httpc      *http.Client

	writeMu sync.Mutex // websocket writes must not interleave

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan callOutcome
	closed  bool

	callTimeout time.Duration
	done        chan struct{}
}

type callOutcome struct {
	result json.RawMessage
	err    error
}

// target is the control endpoint's description of a debuggable page
type target struct {
	ID                   string `json:"id"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// frame is one inbound message on the debug socket
type frame struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *frameError     `json:"error"`
}

type frameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Open creates a fresh browser target via the control endpoint and
// connects to its debug socket
func Open(ctx context.Context, controlURL string) (*Session, error) {
	s := &Session{
		controlURL:  controlURL,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		pending:     make(map[int64]chan callOutcome),
		callTimeout: CallTimeout,
		done:        make(chan struct{}),
	}

	t, err := s.newTarget(ctx)
	if err != nil {
		return nil, err
	}
	s.targetID = t.ID

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.WebSocketDebuggerURL, nil)
	if err != nil {
		s.releaseTarget()
		return nil, fmt.Errorf("failed to connect to debug socket: %w", err)
	}
	s.conn = conn

	go s.readLoop()
	return s, nil
}

// newTarget asks the control endpoint for a fresh page target.
// Chrome 111+ requires PUT for /json/new.
func (s *Session) newTarget(ctx context.Context) (*target, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.controlURL+"/json/new", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build control request: %w", err)
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser target: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("browser control returned status %d", resp.StatusCode)
	}
	var t target
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode target: %w", err)
	}
	if t.WebSocketDebuggerURL == "" {
		return nil, fmt.Errorf("browser target has no debugger URL")
	}
	return &t, nil
}

// Call sends one command and waits for its correlated response. A call
// that sees no response within CallTimeout fails and its id is
// forgotten; a late response for that id is ignored.
func (s *Session) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("session is closed")
	}
	s.nextID++
	id := s.nextID
	ch := make(chan callOutcome, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	msg := map[string]any{"id": id, "method": method}
	if params != nil {
		msg["params"] = params
	}

	s.writeMu.Lock()
	err := s.conn.WriteJSON(msg)
	s.writeMu.Unlock()
	if err != nil {
		s.forget(id)
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	timer := time.NewTimer(s.callTimeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return out.result, nil
	case <-timer.C:
		s.forget(id)
		return nil, fmt.Errorf("%s timed out after %s", method, s.callTimeout)
	case <-ctx.Done():
		s.forget(id)
		return nil, ctx.Err()
	}
}

func (s *Session) forget(id int64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// readLoop dispatches inbound frames to their pending calls. Frames
// without a matching pending id (events, late responses) are ignored.
func (s *Session) readLoop() {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.failPending(fmt.Errorf("debug socket closed: %w", err))
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.ID == 0 {
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[f.ID]
		if ok {
			delete(s.pending, f.ID)
		}
		s.mu.Unlock()
		if !ok {
			continue
		}

		if f.Error != nil {
			ch <- callOutcome{err: fmt.Errorf("browser error: %s", f.Error.Message)}
		} else {
			ch <- callOutcome{result: f.Result}
		}
	}
}

// failPending rejects every outstanding call with err
func (s *Session) failPending(err error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[int64]chan callOutcome)
	s.mu.Unlock()

	for _, ch := range pending {
		ch <- callOutcome{err: err}
	}
}

// Close tears the session down: the socket closes, every outstanding
// call is rejected, and the browser target is released best-effort.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.conn.Close()
	s.failPending(fmt.Errorf("session closed"))

	select {
	case <-s.done:
	case <-time.After(time.Second):
	}

	s.releaseTarget()
	return err
}

// releaseTarget closes the browser target via the control endpoint.
// Failures here are swallowed: the page is already orphaned at worst.
func (s *Session) releaseTarget() {
	if s.targetID == "" {
		return
	}
	req, err := http.NewRequest(http.MethodPut, s.controlURL+"/json/close/"+s.targetID, nil)
	if err != nil {
		return
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		logging.Debugf("[browser] failed to release target %s: %v", s.targetID, err)
		return
	}
	resp.Body.Close()
}
