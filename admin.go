package frontier

import (
	"bytes"
	"context"
)

// ListQueues returns the identifiers of up to max dispatchable queues
// (max <= 0 means unlimited): queues whose head SCHED entry has
// nextFetchDate <= now. Order follows the registry's insertion order.
func (f *Frontier) ListQueues(ctx context.Context, max int) ([]QueueWithinCrawl, error) {
	now := nowEpochSeconds()
	var out []QueueWithinCrawl
	for _, q := range f.registry.Keys() {
		if max > 0 && len(out) >= max {
			break
		}
		dispatchable, err := f.queueHasDispatchableHead(ctx, q, now)
		if err != nil {
			return nil, err
		}
		if dispatchable {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *Frontier) queueHasDispatchableHead(ctx context.Context, q QueueWithinCrawl, now int64) (bool, error) {
	prefix := encodeQueuePrefix(q)
	found := false
	err := f.store.Iterate(ctx, FamilySched, prefix, func(e KVEntry) bool {
		kq, nfd, _, perr := parseScheduling(e.Key)
		if perr != nil || kq != q {
			return false
		}
		found = nfd <= now
		return false // only the head entry matters
	})
	return found, err
}

// GetStats reports counts for a single queue (q != nil) or across
// every registered queue (q == nil).
func (f *Frontier) GetStats(ctx context.Context, q *QueueWithinCrawl) (Stats, error) {
	now := nowEpochSeconds()
	var queues []QueueWithinCrawl
	if q != nil {
		queues = []QueueWithinCrawl{*q}
	} else {
		queues = f.registry.Keys()
	}

	stats := Stats{
		NumberOfQueues: len(queues),
		Counts:         map[string]int64{"active": 0, "completed": 0, "held": 0},
	}
	for _, qq := range queues {
		meta, ok := f.registry.Get(qq)
		if !ok {
			continue
		}
		active := int64(meta.CountActive())
		completed := int64(meta.CountCompleted())
		held := int64(meta.CountHeld(now))

		stats.Counts["active"] += active
		stats.Counts["completed"] += completed
		stats.Counts["held"] += held
		stats.Size += active + completed
		stats.InProcess += held
	}
	return stats, nil
}

// DeleteQueue tears down q: it is marked deleting so concurrent Puts
// are dropped, both families are range-deleted over q's key range, and
// q is removed from the registry. Returns the number of URLs removed
// (active + completed at the time of deletion). Idempotent: deleting
// an unknown queue is a no-op that returns 0.
func (f *Frontier) DeleteQueue(ctx context.Context, q QueueWithinCrawl) (int64, error) {
	meta, ok := f.registry.Get(q)
	if !ok {
		return 0, nil
	}

	f.registry.MarkDeleting(q)
	defer f.registry.UnmarkDeleting(q)

	removed := int64(meta.CountActive() + meta.CountCompleted())

	start := encodeQueuePrefix(q)
	end := f.queueRangeEnd(q, start)

	if err := f.store.DeleteRange(ctx, FamilyURL, start, end); err != nil {
		return 0, err
	}
	if err := f.store.DeleteRange(ctx, FamilySched, start, end); err != nil {
		return 0, err
	}

	f.registry.Remove(q)
	return removed, nil
}

// queueRangeEnd computes the exclusive end of q's key range: the
// prefix of the next queue in sorted order, or nil (meaning "through
// the end of the family") if q is last.
func (f *Frontier) queueRangeEnd(q QueueWithinCrawl, start []byte) []byte {
	next, ok := f.registry.NextInOrder(q)
	if !ok {
		return nil
	}
	return encodeQueuePrefix(next)
}

// DeleteCrawl tears down every queue belonging to crawlID using the
// same strategy as DeleteQueue, but ranging over the whole crawl
// prefix at once. Returns the total number of URLs removed.
func (f *Frontier) DeleteCrawl(ctx context.Context, crawlID string) (int64, error) {
	crawlID = NormalizeCrawlID(crawlID)

	var toDelete []QueueWithinCrawl
	var removed int64
	for _, q := range f.registry.Keys() {
		if q.CrawlID != crawlID {
			continue
		}
		if meta, ok := f.registry.Get(q); ok {
			removed += int64(meta.CountActive() + meta.CountCompleted())
		}
		toDelete = append(toDelete, q)
		f.registry.MarkDeleting(q)
	}
	defer func() {
		for _, q := range toDelete {
			f.registry.UnmarkDeleting(q)
		}
	}()

	start := crawlPrefix(crawlID)
	end := f.nextCrawlPrefix(crawlID)

	if err := f.store.DeleteRange(ctx, FamilyURL, start, end); err != nil {
		return 0, err
	}
	if err := f.store.DeleteRange(ctx, FamilySched, start, end); err != nil {
		return 0, err
	}

	for _, q := range toDelete {
		f.registry.Remove(q)
	}
	return removed, nil
}

// crawlPrefix returns the byte prefix shared by every key (of either
// family) belonging to crawlID: esc(crawlID) "_" .
func crawlPrefix(crawlID string) []byte {
	return append([]byte(escape(crawlID)), sep)
}

// nextCrawlPrefix returns the smallest crawl prefix, among currently
// registered queues, that sorts after crawlID's own prefix in KV-store
// byte order, or nil if there is none.
func (f *Frontier) nextCrawlPrefix(crawlID string) []byte {
	start := crawlPrefix(crawlID)
	var best []byte
	for _, q := range f.registry.Keys() {
		p := crawlPrefix(q.CrawlID)
		if bytes.Compare(p, start) <= 0 {
			continue
		}
		if best == nil || bytes.Compare(p, best) < 0 {
			best = p
		}
	}
	return best
}

// ByteRangeContains reports whether key falls in [start, end), with a
// nil end meaning "unbounded".
func ByteRangeContains(key, start, end []byte) bool {
	if bytes.Compare(key, start) < 0 {
		return false
	}
	return end == nil || bytes.Compare(key, end) < 0
}
