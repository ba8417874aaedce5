package history_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/schmitech/orbit-go/pkg/history"
)

// newTestStore creates a Store for testing. Both implementations are run
// through the same test logic.
func newTestStore(t *testing.T, backend string) history.Store {
	t.Helper()
	switch backend {
	case "memory":
		s := history.NewMemory()
		t.Cleanup(func() { s.Close() })
		return s
	case "badger":
		s, err := history.NewBadger(history.BadgerOptions{InMemory: true})
		if err != nil {
			t.Fatalf("NewBadger: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	default:
		t.Fatalf("unknown backend %q", backend)
		return nil
	}
}

func backends(t *testing.T, fn func(t *testing.T, s history.Store)) {
	for _, backend := range []string{"memory", "badger"} {
		t.Run(backend, func(t *testing.T) {
			fn(t, newTestStore(t, backend))
		})
	}
}

func collectTurns(t *testing.T, s history.Store, sessionID string) []history.Turn {
	t.Helper()
	var turns []history.Turn
	for turn, err := range s.List(sessionID) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		turns = append(turns, turn)
	}
	return turns
}

func TestAppendAndList(t *testing.T) {
	backends(t, func(t *testing.T, s history.Store) {
		at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		err := s.Append("s-1",
			history.Turn{Role: "user", Content: "hello", At: at},
			history.Turn{Role: "assistant", Content: "hi there", At: at.Add(time.Second)},
		)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := s.Append("s-1", history.Turn{Role: "user", Content: "again", At: at.Add(time.Minute)}); err != nil {
			t.Fatalf("Append: %v", err)
		}

		turns := collectTurns(t, s, "s-1")
		if len(turns) != 3 {
			t.Fatalf("turns = %d, want 3", len(turns))
		}
		if turns[0].Role != "user" || turns[0].Content != "hello" {
			t.Fatalf("turns[0] = %+v", turns[0])
		}
		if turns[1].Role != "assistant" || turns[2].Content != "again" {
			t.Fatalf("turns = %+v", turns)
		}
		if !turns[0].At.Equal(at) {
			t.Fatalf("At = %v, want %v", turns[0].At, at)
		}
	})
}

func TestListOrderSurvivesManyTurns(t *testing.T) {
	// Enough turns that naive string-ordered keys (1, 10, 11, 2, ...)
	// would come back shuffled.
	backends(t, func(t *testing.T, s history.Store) {
		for i := 0; i < 25; i++ {
			err := s.Append("s-ord", history.Turn{Role: "user", Content: fmt.Sprintf("turn %d", i)})
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
		turns := collectTurns(t, s, "s-ord")
		if len(turns) != 25 {
			t.Fatalf("turns = %d", len(turns))
		}
		for i, turn := range turns {
			if want := fmt.Sprintf("turn %d", i); turn.Content != want {
				t.Fatalf("turns[%d] = %q, want %q", i, turn.Content, want)
			}
		}
	})
}

func TestListMissingSession(t *testing.T) {
	backends(t, func(t *testing.T, s history.Store) {
		if turns := collectTurns(t, s, "nope"); len(turns) != 0 {
			t.Fatalf("turns = %+v, want none", turns)
		}
	})
}

func TestClear(t *testing.T) {
	backends(t, func(t *testing.T, s history.Store) {
		s.Append("s-a", history.Turn{Role: "user", Content: "keep me out"})
		s.Append("s-b", history.Turn{Role: "user", Content: "survivor"})

		if err := s.Clear("s-a"); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if turns := collectTurns(t, s, "s-a"); len(turns) != 0 {
			t.Fatalf("cleared session still has %d turns", len(turns))
		}
		if turns := collectTurns(t, s, "s-b"); len(turns) != 1 {
			t.Fatalf("other session lost turns: %d", len(turns))
		}

		// Clearing an absent session is not an error.
		if err := s.Clear("never-existed"); err != nil {
			t.Fatalf("Clear absent: %v", err)
		}
	})
}

func TestSessions(t *testing.T) {
	backends(t, func(t *testing.T, s history.Store) {
		s.Append("beta", history.Turn{Role: "user", Content: "x"})
		s.Append("alpha", history.Turn{Role: "user", Content: "y"})

		sessions, err := s.Sessions()
		if err != nil {
			t.Fatalf("Sessions: %v", err)
		}
		if len(sessions) != 2 || sessions[0] != "alpha" || sessions[1] != "beta" {
			t.Fatalf("sessions = %v", sessions)
		}
	})
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := history.NewBadger(history.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := s.Append("s-1", history.Turn{Role: "user", Content: "persist me"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = history.NewBadger(history.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	turns := collectTurns(t, s, "s-1")
	if len(turns) != 1 || turns[0].Content != "persist me" {
		t.Fatalf("turns after reopen = %+v", turns)
	}
}
