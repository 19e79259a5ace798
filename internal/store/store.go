// Package store persists pairings, sessions, messages and memory events.
//
// All writes are single-statement inserts/upserts. A crash between an
// inbound message write and its outbound reply can leave the log with an
// unanswered inbound row; that gap is accepted and documented rather than
// papered over with a turn-spanning transaction.
package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Pairing is the approval gate for a (channel, sender) pair.
// The code is generated once and never regenerated.
type Pairing struct {
	Channel   string    `json:"channel"`
	SenderID  string    `json:"sender_id"`
	Approved  bool      `json:"approved"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one conversation per (channel, sender) pair
type Session struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one entry in a session's append-only log
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Direction string    `json:"direction"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the database with the gateway's persistence operations
type Store struct {
	db *sql.DB
}

// New creates a store over an open database
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertPairing returns the pairing for (channel, senderID), creating an
// unapproved one with a fresh 6-digit code on first contact. The code is
// immutable for the lifetime of the pairing.
func (s *Store) UpsertPairing(channel, senderID string) (*Pairing, error) {
	p, err := s.getPairing(channel, senderID)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	code, err := pairingCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	_, err = s.db.Exec(
		`INSERT INTO pairings (channel, sender_id, approved, code, created_at) VALUES (?, ?, 0, ?, ?)`,
		channel, senderID, code, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pairing: %w", err)
	}
	return &Pairing{
		Channel:   channel,
		SenderID:  senderID,
		Code:      code,
		CreatedAt: time.Unix(now, 0),
	}, nil
}

func (s *Store) getPairing(channel, senderID string) (*Pairing, error) {
	var p Pairing
	var approved int
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT channel, sender_id, approved, code, created_at FROM pairings WHERE channel = ? AND sender_id = ?`,
		channel, senderID,
	).Scan(&p.Channel, &p.SenderID, &approved, &p.Code, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Approved = approved != 0
	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

// ApprovePairing marks a pairing as approved. Approval is one-way.
func (s *Store) ApprovePairing(channel, senderID string) error {
	res, err := s.db.Exec(
		`UPDATE pairings SET approved = 1 WHERE channel = ? AND sender_id = ?`,
		channel, senderID,
	)
	if err != nil {
		return fmt.Errorf("failed to approve pairing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no pairing for %s/%s", channel, senderID)
	}
	return nil
}

// ListPairings returns all pairings, newest first
func (s *Store) ListPairings() ([]Pairing, error) {
	rows, err := s.db.Query(
		`SELECT channel, sender_id, approved, code, created_at FROM pairings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pairing
	for rows.Next() {
		var p Pairing
		var approved int
		var createdAt int64
		if err := rows.Scan(&p.Channel, &p.SenderID, &approved, &p.Code, &createdAt); err != nil {
			return nil, err
		}
		p.Approved = approved != 0
		p.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetOrCreateSession returns the session for (channel, senderID),
// creating it on first use
func (s *Store) GetOrCreateSession(channel, senderID string) (*Session, error) {
	sess, err := s.getSession(channel, senderID)
	if err == nil {
		return sess, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().Unix()
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, channel, sender_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, channel, senderID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Session{
		ID:        id,
		Channel:   channel,
		SenderID:  senderID,
		CreatedAt: time.Unix(now, 0),
		UpdatedAt: time.Unix(now, 0),
	}, nil
}

func (s *Store) getSession(channel, senderID string) (*Session, error) {
	var sess Session
	var createdAt, updatedAt int64
	err := s.db.QueryRow(
		`SELECT id, channel, sender_id, created_at, updated_at FROM sessions WHERE channel = ? AND sender_id = ?`,
		channel, senderID,
	).Scan(&sess.ID, &sess.Channel, &sess.SenderID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)
	return &sess, nil
}

// AddMessage appends a message to a session's log and refreshes the
// session's updated_at
func (s *Store) AddMessage(sessionID, direction, content string) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.Exec(
		`INSERT INTO messages (session_id, direction, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, direction, content, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = s.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, sessionID)
	return id, err
}

// RecentMessages returns the last limit messages of a session in
// chronological order
func (s *Store) RecentMessages(sessionID string, limit int) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, direction, content, created_at FROM (
			SELECT * FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Direction, &m.Content, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMemoryEvent records the outcome of a best-effort memory write.
// These rows are observability only; nothing reads them on the hot path.
func (s *Store) AddMemoryEvent(key, status, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO memory_events (key, status, detail, created_at) VALUES (?, ?, ?, ?)`,
		key, status, detail, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record memory event: %w", err)
	}
	return nil
}

// pairingCode returns a 6-digit numeric code with leading zeros preserved
func pairingCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate pairing code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
