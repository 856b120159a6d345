package frontier

import "context"

// GetParams controls one GetUrls dispatch sweep.
type GetParams struct {
	MaxQueues            int               // 0 = use Config.Get.MaxQueues (0 there = unlimited)
	MaxUrlsPerQueue      int               // 0 = use Config.Get.MaxUrlsPerQueue (0 there = unlimited)
	DelayRequestableSecs int               // 0 = use configured default (30)
	Queue                *QueueWithinCrawl // nil = all queues, round-robin from the registry cursor
}

// GetUrls performs one fair round-robin dispatch sweep across queues
// and sends every dispatchable URLInfo found to out, then closes out.
// Emitting a URL places a time-bounded hold on it but does not modify
// the store, so a crash only loses claims, never durable state.
func (f *Frontier) GetUrls(ctx context.Context, params GetParams, out chan<- URLInfo) error {
	defer close(out)

	now := nowEpochSeconds()
	delay := int64(delayRequestableSecs(params.DelayRequestableSecs))
	maxQueues := intOrConfigured(params.MaxQueues, Config.Get.MaxQueues)
	maxUrlsPerQueue := intOrConfigured(params.MaxUrlsPerQueue, Config.Get.MaxUrlsPerQueue)

	var candidates []QueueWithinCrawl
	if params.Queue != nil {
		candidates = []QueueWithinCrawl{*params.Queue}
	} else {
		candidates = f.registry.RotationFrom()
	}

	queuesVisited := 0
	queuesDispatched := 0
	for _, q := range candidates {
		if maxQueues > 0 && queuesDispatched >= maxQueues {
			break
		}
		select {
		case <-ctx.Done():
			if params.Queue == nil {
				f.registry.Advance(queuesVisited)
			}
			return ctx.Err()
		default:
		}

		sent, err := f.dispatchQueue(ctx, q, now, delay, maxUrlsPerQueue, out)
		queuesVisited++
		if err != nil {
			if params.Queue == nil {
				f.registry.Advance(queuesVisited)
			}
			return err
		}
		if sent > 0 {
			queuesDispatched++
		}
	}
	if params.Queue == nil {
		f.registry.Advance(queuesVisited)
	}
	return nil
}

// dispatchQueue iterates SCHED forward from q's prefix, emitting every
// dispatchable (nextFetchDate <= now, not held) entry up to maxPerQueue
// (0 = unlimited), and stops as soon as it hits an entry with a future
// nextFetchDate, since SCHED is ordered by it within a queue.
func (f *Frontier) dispatchQueue(ctx context.Context, q QueueWithinCrawl, now, delay int64, maxPerQueue int, out chan<- URLInfo) (sent int, err error) {
	meta, ok := f.registry.Get(q)
	if !ok {
		return 0, nil
	}

	prefix := encodeQueuePrefix(q)
	iterErr := f.store.Iterate(ctx, FamilySched, prefix, func(e KVEntry) bool {
		kq, nfd, url, perr := parseScheduling(e.Key)
		if perr != nil {
			log.Errorw("get: malformed SCHED key, skipping", "error", perr)
			return true
		}
		if kq != q {
			return false // left this queue's prefix
		}
		if nfd > now {
			return false // remaining entries are strictly later
		}
		if meta.CheckAndHold(url, now, now+delay) {
			return true // held by a previous dispatch, skip
		}

		info, derr := deserializeURLInfo(e.Value)
		if derr != nil {
			log.Errorw("get: failed to deserialize SCHED value, skipping", "url", url, "error", derr)
			return true
		}

		select {
		case out <- *info:
		case <-ctx.Done():
			return false
		}
		sent++
		return maxPerQueue == 0 || sent < maxPerQueue
	})
	if iterErr != nil {
		return sent, iterErr
	}
	return sent, nil
}
