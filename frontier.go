package frontier

import "context"

// Frontier wires together a KVStore and the in-memory QueueRegistry
// that indexes it, and is the entry point for every operation in this
// package: Put/GetUrls, the admin operations, and recovery.
//
// The zero value is not usable; construct with Open.
type Frontier struct {
	store    KVStore
	registry *QueueRegistry
}

// Open wraps store in a Frontier and runs Recover against it before
// returning, so it is executed once at startup before any request is
// served. A failed recovery is returned as an error; callers should
// treat it as fatal and refuse to serve.
func Open(ctx context.Context, store KVStore) (*Frontier, error) {
	f := &Frontier{
		store:    store,
		registry: NewQueueRegistry(),
	}
	if err := f.Recover(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// Close releases the underlying store. Clean shutdown flushes and
// closes it before the process exits.
func (f *Frontier) Close() error {
	return f.store.Close()
}
