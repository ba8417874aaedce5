package history

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	turn:<session>:<seq>  msgpack Turn, seq zero-padded so the
//	                      lexicographic iteration order is append order
//	seq:<session>         next sequence number, varint
const (
	turnPrefix = "turn:"
	seqPrefix  = "seq:"
	seqWidth   = 12
)

// Badger is a Store backed by BadgerDB v4.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool
}

// NewBadger opens a BadgerDB-backed history store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("history: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(quietLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func turnKey(sessionID string, seq uint64) []byte {
	return fmt.Appendf(nil, "%s%s:%0*d", turnPrefix, sessionID, seqWidth, seq)
}

func seqKey(sessionID string) []byte {
	return []byte(seqPrefix + sessionID)
}

func (b *Badger) Append(sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	return b.db.Update(func(txn *badger.Txn) error {
		var next uint64
		item, err := txn.Get(seqKey(sessionID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(v []byte) error {
				_, parseErr := fmt.Sscanf(string(v), "%d", &next)
				return parseErr
			}); err != nil {
				return err
			}
		}

		for _, t := range turns {
			val, err := encodeTurn(t)
			if err != nil {
				return err
			}
			if err := txn.Set(turnKey(sessionID, next), val); err != nil {
				return err
			}
			next++
		}
		return txn.Set(seqKey(sessionID), fmt.Appendf(nil, "%d", next))
	})
}

func (b *Badger) List(sessionID string) iter.Seq2[Turn, error] {
	prefix := []byte(turnPrefix + sessionID + ":")

	return func(yield func(Turn, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = prefix
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				val, err := it.Item().ValueCopy(nil)
				if err != nil {
					if !yield(Turn{}, err) {
						return nil
					}
					continue
				}
				turn, err := decodeTurn(val)
				if !yield(turn, err) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Turn{}, err)
		}
	}
}

func (b *Badger) Clear(sessionID string) error {
	prefix := []byte(turnPrefix + sessionID + ":")
	var keys [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	if err := wb.Delete(seqKey(sessionID)); err != nil {
		return err
	}
	return wb.Flush()
}

func (b *Badger) Sessions() ([]string, error) {
	var sessions []string
	prefix := []byte(seqPrefix)

	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().Key())
			sessions = append(sessions, strings.TrimPrefix(k, seqPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// quietLogger suppresses badger's info and debug chatter.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{}) { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) {
	log.Printf("[badger] WARN: "+f, v...)
}
func (quietLogger) Infof(string, ...interface{})  {}
func (quietLogger) Debugf(string, ...interface{}) {}
