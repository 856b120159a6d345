package frontier

import (
	"context"
	"fmt"
)

// Recover rebuilds the QueueRegistry and every QueueMetadata's counts
// from the durable store. It runs once at startup, before the
// Frontier serves any request: step A walks SCHED to get a
// cross-check count per queue; step B walks URL, which is
// authoritative for active/completed, and asserts its scheduled count
// matches step A's at every queue boundary. A mismatch is a fatal,
// store-is-inconsistent error.
func (f *Frontier) Recover(ctx context.Context) error {
	schedCounts, err := f.recoverSchedCounts(ctx)
	if err != nil {
		return fmt.Errorf("frontier: recovery step A (SCHED) failed: %w", err)
	}

	if err := f.recoverFromURL(ctx, schedCounts); err != nil {
		return fmt.Errorf("frontier: recovery step B (URL) failed: %w", err)
	}
	return nil
}

// recoverSchedCounts walks SCHED in key order, registering every queue
// it finds and counting its entries.
func (f *Frontier) recoverSchedCounts(ctx context.Context) (map[QueueWithinCrawl]uint64, error) {
	counts := make(map[QueueWithinCrawl]uint64)
	err := f.store.Iterate(ctx, FamilySched, nil, func(e KVEntry) bool {
		q, perr := parseQueue(e.Key)
		if perr != nil {
			err := fmt.Errorf("frontier: could not parse SCHED key %q: %w", e.Key, perr)
			log.Errorw("recovery: malformed SCHED key", "error", err)
			return true // skip; a corrupt single key should not abort the whole scan
		}
		f.registry.GetOrInsert(q, NewQueueMetadata)
		counts[q]++
		return true
	})
	return counts, err
}

// recoverFromURL walks URL in key order (which, since URL keys share
// the same queue-prefix encoding as SCHED keys, iterates queue by
// queue in the same order). active is the authoritative count, taken
// from the number of non-empty existence values; completed counts
// empty ones. At each queue boundary, the running active count must
// equal the count step A found in SCHED for that queue; a queue with
// SCHED entries but no URL entries at all is an inconsistency too.
func (f *Frontier) recoverFromURL(ctx context.Context, schedCounts map[QueueWithinCrawl]uint64) error {
	var (
		current     QueueWithinCrawl
		haveCurrent bool
		active      uint64
		completed   uint64
		seen        = make(map[QueueWithinCrawl]bool)
	)

	closeOut := func() error {
		if !haveCurrent {
			return nil
		}
		if active != schedCounts[current] {
			return fmt.Errorf("frontier: recovery inconsistency in queue %v: URL active=%d but SCHED count=%d",
				current, active, schedCounts[current])
		}
		meta, _ := f.registry.GetOrInsert(current, NewQueueMetadata)
		meta.setCounts(active, completed)
		return nil
	}

	var iterErr error
	err := f.store.Iterate(ctx, FamilyURL, nil, func(e KVEntry) bool {
		q, perr := parseQueue(e.Key)
		if perr != nil {
			log.Errorw("recovery: malformed URL key", "error", perr)
			return true
		}
		if !haveCurrent || q != current {
			if cerr := closeOut(); cerr != nil {
				iterErr = cerr
				return false
			}
			current = q
			haveCurrent = true
			seen[q] = true
			active = 0
			completed = 0
		}
		if len(e.Value) == 0 {
			completed++
		} else {
			active++
		}
		return true
	})
	if err != nil {
		return err
	}
	if iterErr != nil {
		return iterErr
	}
	if err := closeOut(); err != nil {
		return err
	}
	for q, n := range schedCounts {
		if n > 0 && !seen[q] {
			return fmt.Errorf("frontier: recovery inconsistency in queue %v: URL active=0 but SCHED count=%d", q, n)
		}
	}
	return nil
}
