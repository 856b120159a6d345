// Package memstore implements frontier.KVStore directly on a sorted,
// mutex-guarded slice. No embedded ordered KV-store library (RocksDB,
// Badger, bbolt, Pebble) appears anywhere in the retrieved example
// corpus — see DESIGN.md — so this is the stdlib-only default backend:
// everything a single process needs for the byte-identical key layout
// codec.go defines, without a durability story beyond the process
// lifetime. For a durable, multi-process deployment use
// kvstore/cassandra instead; both implement the same frontier.KVStore
// interface.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/MattiSG/url-frontier"
)

type family struct {
	mu   sync.RWMutex
	keys [][]byte
	vals [][]byte
}

// Store is an in-memory frontier.KVStore. The zero value is not
// usable; construct with New.
type Store struct {
	url   family
	sched family
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

func (s *Store) familyFor(name frontier.Family) *family {
	switch name {
	case frontier.FamilyURL:
		return &s.url
	case frontier.FamilySched:
		return &s.sched
	default:
		panic("memstore: unknown family " + string(name))
	}
}

// search returns the index of the first key >= target (sort.Search
// convention). Caller must hold at least a read lock on f.
func (f *family) search(target []byte) int {
	return sort.Search(len(f.keys), func(i int) bool {
		return bytes.Compare(f.keys[i], target) >= 0
	})
}

// Get implements frontier.KVStore.
func (s *Store) Get(ctx context.Context, fam frontier.Family, key []byte) ([]byte, bool, error) {
	f := s.familyFor(fam)
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.search(key)
	if i < len(f.keys) && bytes.Equal(f.keys[i], key) {
		v := make([]byte, len(f.vals[i]))
		copy(v, f.vals[i])
		return v, true, nil
	}
	return nil, false, nil
}

// Put implements frontier.KVStore.
func (s *Store) Put(ctx context.Context, fam frontier.Family, key, value []byte) error {
	f := s.familyFor(fam)
	f.mu.Lock()
	defer f.mu.Unlock()

	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	i := f.search(key)
	if i < len(f.keys) && bytes.Equal(f.keys[i], key) {
		f.vals[i] = v
		return nil
	}
	f.keys = append(f.keys, nil)
	f.vals = append(f.vals, nil)
	copy(f.keys[i+1:], f.keys[i:])
	copy(f.vals[i+1:], f.vals[i:])
	f.keys[i] = k
	f.vals[i] = v
	return nil
}

// Delete implements frontier.KVStore.
func (s *Store) Delete(ctx context.Context, fam frontier.Family, key []byte) error {
	f := s.familyFor(fam)
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.search(key)
	if i < len(f.keys) && bytes.Equal(f.keys[i], key) {
		f.keys = append(f.keys[:i], f.keys[i+1:]...)
		f.vals = append(f.vals[:i], f.vals[i+1:]...)
	}
	return nil
}

// Iterate implements frontier.KVStore. It snapshots the family under
// lock so a slow yield (deserializing, sending on a channel) doesn't
// hold the store locked against concurrent Puts.
func (s *Store) Iterate(ctx context.Context, fam frontier.Family, fromPrefix []byte, yield func(frontier.KVEntry) bool) error {
	f := s.familyFor(fam)
	f.mu.RLock()
	start := f.search(fromPrefix)
	keys := make([][]byte, len(f.keys)-start)
	vals := make([][]byte, len(f.vals)-start)
	copy(keys, f.keys[start:])
	copy(vals, f.vals[start:])
	f.mu.RUnlock()

	for i := range keys {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !yield(frontier.KVEntry{Key: keys[i], Value: vals[i]}) {
			return nil
		}
	}
	return nil
}

// DeleteRange implements frontier.KVStore.
func (s *Store) DeleteRange(ctx context.Context, fam frontier.Family, startInclusive, endExclusive []byte) error {
	f := s.familyFor(fam)
	f.mu.Lock()
	defer f.mu.Unlock()

	start := f.search(startInclusive)
	end := len(f.keys)
	if endExclusive != nil {
		end = f.search(endExclusive)
	}
	if start >= end {
		return nil
	}
	f.keys = append(f.keys[:start], f.keys[end:]...)
	f.vals = append(f.vals[:start], f.vals[end:]...)
	return nil
}

// Close implements frontier.KVStore. memstore holds no external
// resources, so Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Purge implements frontier.Purger by dropping every key in both
// families.
func (s *Store) Purge(ctx context.Context) error {
	for _, f := range []*family{&s.url, &s.sched} {
		f.mu.Lock()
		f.keys = nil
		f.vals = nil
		f.mu.Unlock()
	}
	return nil
}
