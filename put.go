package frontier

import (
	"context"
	"sync"

	"github.com/MattiSG/url-frontier/internal/semaphore"
)

// maxConcurrentPuts bounds how many items PutUrls applies against the
// store at once, so a burst on the input channel can't open unbounded
// concurrent KV-store operations.
const maxConcurrentPuts = 32

// PutUrls consumes items from in, applies each item's insert/ignore/
// reschedule-or-complete decision against the store, and emits one Ack
// per accepted item to out. It returns when in is closed (or ctx is
// done), after closing out.
//
// Ordering within the stream is best-effort, not a contract: item N is
// fully applied before its ack is emitted, but item N+1 may begin
// concurrently with N's ack — PutUrls applies up to maxConcurrentPuts
// items concurrently for this reason, gated by an
// internal/semaphore.Semaphore; a sync.WaitGroup waits for the items
// still in flight before out is closed.
func (f *Frontier) PutUrls(ctx context.Context, in <-chan URLItem, out chan<- Ack) {
	defer close(out)

	sem := semaphore.New(maxConcurrentPuts)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case item, ok := <-in:
			if !ok {
				wg.Wait()
				return
			}
			sem.Acquire()
			wg.Add(1)
			go func(item URLItem) {
				defer wg.Done()
				defer sem.Release()

				url := f.applyPut(ctx, item)
				if url == "" {
					return // store error or item without a URL; no ack
				}
				select {
				case out <- Ack{URL: url}:
				case <-ctx.Done():
				}
			}(item)
		}
	}
}

// applyPut runs the per-item insert/ignore/reschedule-or-complete
// decision and returns the URL to ack, or "" if the item was dropped
// without an ack (a KV store failure: the client is expected to time
// out).
func (f *Frontier) applyPut(ctx context.Context, item URLItem) string {
	info := item.Discovered
	isDiscovered := info != nil
	if !isDiscovered {
		info = item.Known
	}
	if info == nil || info.URL == "" {
		log.Errorw("put: item has neither Discovered nor Known info set")
		return ""
	}

	crawlID := NormalizeCrawlID(info.CrawlID)

	queueKey := info.Key
	if queueKey == "" {
		derived, err := deriveQueueKey(info.URL)
		if err != nil {
			log.Infow("put: dropping url with no derivable queue key", "url", info.URL, "error", err)
			return info.URL // acked and dropped
		}
		queueKey = derived
	}
	if len(queueKey) > MaxQueueKeyBytes {
		log.Infow("put: dropping url with oversized queue key", "url", info.URL, "keyLen", len(queueKey))
		return info.URL
	}

	q := QueueWithinCrawl{CrawlID: crawlID, Queue: queueKey}
	if f.registry.IsDeleting(q) {
		log.Infow("put: dropping url for queue being deleted", "url", info.URL, "queue", q)
		return info.URL
	}

	var nfd int64
	if isDiscovered {
		nfd = nowEpochSeconds()
	} else {
		nfd = item.RefetchableFromDate
	}

	eKey := encodeExistence(q, info.URL)
	prior, found, err := f.store.Get(ctx, FamilyURL, eKey)
	if err != nil {
		log.Errorw("put: store get failed", "url", info.URL, "error", err)
		return ""
	}

	switch {
	case isDiscovered && !found:
		if err := f.insertNew(ctx, q, info, nfd, eKey); err != nil {
			log.Errorw("put: insert failed", "url", info.URL, "error", err)
			return ""
		}
	case isDiscovered && found:
		// already known; no-op.
	default:
		if err := f.rescheduleOrComplete(ctx, q, info, nfd, eKey, prior, found); err != nil {
			log.Errorw("put: reschedule/complete failed", "url", info.URL, "error", err)
			return ""
		}
	}
	return info.URL
}

func (f *Frontier) insertNew(ctx context.Context, q QueueWithinCrawl, info *URLInfo, nfd int64, eKey []byte) error {
	sKey := encodeScheduling(q, nfd, info.URL)
	value, err := serializeURLInfo(info)
	if err != nil {
		return err
	}
	if err := f.store.Put(ctx, FamilySched, sKey, value); err != nil {
		return err
	}
	if err := f.store.Put(ctx, FamilyURL, eKey, sKey); err != nil {
		return err
	}
	meta, _ := f.registry.GetOrInsert(q, NewQueueMetadata)
	meta.IncrementActive()
	return nil
}

func (f *Frontier) rescheduleOrComplete(ctx context.Context, q QueueWithinCrawl, info *URLInfo, nfd int64, eKey, prior []byte, priorFound bool) error {
	meta, _ := f.registry.GetOrInsert(q, NewQueueMetadata)

	if priorFound && len(prior) > 0 {
		if err := f.store.Delete(ctx, FamilySched, prior); err != nil {
			return err
		}
		meta.RemoveFromProcessed(info.URL)
		meta.DecrementActive()
	}

	if nfd == 0 {
		if err := f.store.Put(ctx, FamilyURL, eKey, []byte{}); err != nil {
			return err
		}
		meta.IncrementCompleted()
		return nil
	}

	sKey := encodeScheduling(q, nfd, info.URL)
	value, err := serializeURLInfo(info)
	if err != nil {
		return err
	}
	if err := f.store.Put(ctx, FamilySched, sKey, value); err != nil {
		return err
	}
	if err := f.store.Put(ctx, FamilyURL, eKey, sKey); err != nil {
		return err
	}
	meta.IncrementActive()
	return nil
}
