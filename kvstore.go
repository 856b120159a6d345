package frontier

import "context"

// Family names the two column families the frontier requires of its
// KV store.
type Family string

const (
	// FamilyURL holds existence keys: one per URL, value is either
	// empty (completed) or the scheduling key currently representing
	// this URL.
	FamilyURL Family = "URL"

	// FamilySched holds scheduling keys: one per scheduled URL,
	// ordered by embedded nextFetchDate within a queue.
	FamilySched Family = "SCHED"
)

// KVEntry is one key/value pair returned by KVStore.Iterate.
type KVEntry struct {
	Key   []byte
	Value []byte
}

// KVStore abstracts the ordered key/value store the frontier persists
// to. Implementations must support point get/put/delete, forward
// ranged iteration seekable to a byte prefix, and ranged delete. Put
// and Delete are durable on return; DeleteRange is atomic only at the
// per-call level. No multi-key transactions are required or assumed
// by callers.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type KVStore interface {
	Get(ctx context.Context, family Family, key []byte) (value []byte, found bool, err error)
	Put(ctx context.Context, family Family, key, value []byte) error
	Delete(ctx context.Context, family Family, key []byte) error

	// Iterate calls yield for every key in family lexicographically
	// >= fromPrefix, in ascending key order, until yield returns false
	// or the store is exhausted. Iterate itself returns any error
	// encountered while reading the store; errors from yield are not
	// reported back (the caller already has what it needs by the time
	// it returns false).
	Iterate(ctx context.Context, family Family, fromPrefix []byte, yield func(KVEntry) bool) error

	// DeleteRange removes every key in family in [startInclusive,
	// endExclusive). A nil endExclusive means "through the end of the
	// family".
	DeleteRange(ctx context.Context, family Family, startInclusive, endExclusive []byte) error

	// Close flushes and releases any resources held by the store.
	Close() error
}

// Purger is optionally implemented by a KVStore that can wipe all of
// its data in place. Both shipped backends implement it; it backs
// store.purge (config.go) and `frontierd purge` (cmd/cmd.go).
type Purger interface {
	Purge(ctx context.Context) error
}
