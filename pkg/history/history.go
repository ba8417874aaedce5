// Package history persists chat conversation turns locally, keyed by session.
// It backs the CLI's REPL so a conversation survives process restarts and can
// be replayed into the messages array of the next request.
//
// The package includes a BadgerDB-backed implementation for the CLI and an
// in-memory implementation for testing.
package history

import (
	"errors"
	"iter"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a session has no recorded turns.
	ErrNotFound = errors.New("history: session not found")
)

// Turn is one conversation turn, either side.
type Turn struct {
	// Role is "user" or "assistant".
	Role string `msgpack:"role"`

	// Content is the turn text.
	Content string `msgpack:"content"`

	// At is when the turn was recorded.
	At time.Time `msgpack:"at"`
}

// Store records conversation turns per session.
type Store interface {
	// Append records turns at the end of a session, creating it if needed.
	Append(sessionID string, turns ...Turn) error

	// List iterates a session's turns oldest first. A missing session
	// yields nothing.
	List(sessionID string) iter.Seq2[Turn, error]

	// Clear removes all turns of a session. No error if absent.
	Clear(sessionID string) error

	// Sessions returns all session IDs with at least one turn, sorted.
	Sessions() ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// encodeTurn serializes a turn for storage.
func encodeTurn(t Turn) ([]byte, error) {
	return msgpack.Marshal(t)
}

// decodeTurn deserializes a stored turn.
func decodeTurn(b []byte) (Turn, error) {
	var t Turn
	if err := msgpack.Unmarshal(b, &t); err != nil {
		return Turn{}, err
	}
	return t, nil
}
