// Package store archives the outcome of every maintenance pass in a pebble
// database, keyed by maintenance time, together with the latest ledger
// snapshot so replays can continue where they stopped.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
)

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("store closed")
)

var (
	intervalPrefix = []byte("i")
	stateKey       = []byte("s")
)

// Store is the interval archive.
type Store struct {
	db     *pebble.DB
	closed bool
	mu     sync.RWMutex
}

// Open opens or creates the archive in dir with a block cache of cacheMB
// megabytes.
func Open(dir string, cacheMB int) (*Store, error) {
	if cacheMB <= 0 {
		cacheMB = 16
	}
	cache := pebble.NewCache(int64(cacheMB) * 1024 * 1024)
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:        cache,
		MemTableSize: 4 * 1024 * 1024,
	}

	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func intervalKey(at inter.Timestamp) []byte {
	return append(append([]byte(nil), intervalPrefix...), bigendian.Uint32ToBytes(uint32(at))...)
}

// Interval returns the record of the maintenance at at.
func (s *Store) Interval(at inter.Timestamp) (ledger.IntervalRecord, error) {
	var rec ledger.IntervalRecord
	raw, err := s.get(intervalKey(at))
	if err != nil {
		return rec, err
	}
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return rec, fmt.Errorf("interval %d: %w", at, err)
	}
	return rec, nil
}

// Intervals returns the records with maintenance time in [from, to), oldest
// first. A zero to means no upper bound.
func (s *Store) Intervals(from, to inter.Timestamp) ([]ledger.IntervalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	upper := []byte{intervalPrefix[0] + 1}
	if to != 0 {
		upper = intervalKey(to)
	}
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: intervalKey(from),
		UpperBound: upper,
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []ledger.IntervalRecord
	for it.First(); it.Valid(); it.Next() {
		raw, err := it.ValueAndErr()
		if err != nil {
			return nil, err
		}
		var rec ledger.IntervalRecord
		if err := rlp.DecodeBytes(raw, &rec); err != nil {
			return nil, fmt.Errorf("interval key %x: %w", it.Key(), err)
		}
		out = append(out, rec)
	}
	return out, it.Error()
}

// Commit stores the snapshot left by a maintenance pass together with its
// interval record. Both land or neither does. The snapshot replaces the
// previous one; the record replaces an earlier record of the same time.
func (s *Store) Commit(st *ledger.State, rec ledger.IntervalRecord) error {
	rawState, err := rlp.EncodeToBytes(st)
	if err != nil {
		return err
	}
	rawRec, err := rlp.EncodeToBytes(&rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(stateKey, rawState, nil); err != nil {
		return err
	}
	if err := b.Set(intervalKey(rec.MaintenanceTime), rawRec, nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// State returns the stored ledger snapshot.
func (s *Store) State() (*ledger.State, error) {
	raw, err := s.get(stateKey)
	if err != nil {
		return nil, err
	}
	st := new(ledger.State)
	if err := rlp.DecodeBytes(raw, st); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	return st, nil
}

// Close flushes and closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), value...), nil
}
