package history

import (
	"iter"
	"sort"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// primarily for testing. Turns round-trip through the same codec as the
// persistent store so the two stay interchangeable.
type Memory struct {
	mu   sync.RWMutex
	data map[string][][]byte
}

// NewMemory creates a new in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][][]byte)}
}

func (m *Memory) Append(sessionID string, turns ...Turn) error {
	encoded := make([][]byte, 0, len(turns))
	for _, t := range turns {
		b, err := encodeTurn(t)
		if err != nil {
			return err
		}
		encoded = append(encoded, b)
	}
	m.mu.Lock()
	m.data[sessionID] = append(m.data[sessionID], encoded...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(sessionID string) iter.Seq2[Turn, error] {
	m.mu.RLock()
	snapshot := make([][]byte, len(m.data[sessionID]))
	copy(snapshot, m.data[sessionID])
	m.mu.RUnlock()

	return func(yield func(Turn, error) bool) {
		for _, b := range snapshot {
			turn, err := decodeTurn(b)
			if !yield(turn, err) {
				return
			}
		}
	}
}

func (m *Memory) Clear(sessionID string) error {
	m.mu.Lock()
	delete(m.data, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Sessions() ([]string, error) {
	m.mu.RLock()
	sessions := make([]string, 0, len(m.data))
	for id := range m.data {
		sessions = append(sessions, id)
	}
	m.mu.RUnlock()
	sort.Strings(sessions)
	return sessions, nil
}

func (m *Memory) Close() error {
	return nil
}
