package cassandra

import (
	"bytes"
	"context"
	"fmt"

	"github.com/MattiSG/url-frontier"
)

// Iterate implements frontier.KVStore. fromPrefix is always either nil
// (a full-family scan, used only by Recovery) or exactly the byte
// prefix of one queue (frontier.EncodeQueuePrefix(q), used by the Get
// Pipeline and the admin operations) — this backend has no use for,
// and does not support, resuming mid-queue from an arbitrary byte
// offset, since it keys its tables on decoded fields rather than on
// raw key bytes (see schema.go).
func (s *Store) Iterate(ctx context.Context, family frontier.Family, fromPrefix []byte, yield func(frontier.KVEntry) bool) error {
	if fromPrefix == nil {
		return s.iterateAllQueues(ctx, family, yield)
	}

	q, err := frontier.ParseQueue(fromPrefix)
	if err != nil {
		return err
	}
	if len(fromPrefix) != len(frontier.EncodeQueuePrefix(q)) {
		return fmt.Errorf("cassandra: Iterate only supports a bare queue prefix, got %q", fromPrefix)
	}
	_, err = s.iterateQueue(ctx, family, q, yield)
	return err
}

// iterateAllQueues walks queue_index in clustering order (crawl_id,
// queue ascending within the single shard partition — see schema.go)
// and, for each queue, walks its partition in the target family,
// stopping entirely as soon as yield returns false.
func (s *Store) iterateAllQueues(ctx context.Context, family frontier.Family, yield func(frontier.KVEntry) bool) error {
	iter := s.session.Query(
		`SELECT crawl_id, queue FROM queue_index WHERE shard=?`, queueIndexShard,
	).WithContext(ctx).Iter()

	var crawlID, queue string
	for iter.Scan(&crawlID, &queue) {
		cont, err := s.iterateQueue(ctx, family, frontier.QueueWithinCrawl{CrawlID: crawlID, Queue: queue}, yield)
		if err != nil {
			iter.Close()
			return err
		}
		if !cont {
			return iter.Close()
		}
	}
	return iter.Close()
}

// iterateQueue walks one queue's partition in family's natural
// clustering order, reconstructing each row's frontier-layer key.
// cont reports whether yield asked to keep going (false means the
// caller should stop entirely, not just move to the next queue).
func (s *Store) iterateQueue(ctx context.Context, family frontier.Family, q frontier.QueueWithinCrawl, yield func(frontier.KVEntry) bool) (cont bool, err error) {
	switch family {
	case frontier.FamilyURL:
		iter := s.session.Query(
			`SELECT url, sched_key_set, sched_key_nfd, value FROM url_index WHERE crawl_id=? AND queue=?`,
			q.CrawlID, q.Queue,
		).WithContext(ctx).Iter()

		var url string
		var schedSet bool
		var nfd int64
		var value []byte
		for iter.Scan(&url, &schedSet, &nfd, &value) {
			key := frontier.EncodeExistenceKey(q, url)
			v := []byte{}
			if schedSet {
				v = frontier.EncodeSchedulingKey(q, nfd, url)
			}
			if !yield(frontier.KVEntry{Key: key, Value: v}) {
				iter.Close()
				return false, nil
			}
		}
		return true, iter.Close()

	case frontier.FamilySched:
		iter := s.session.Query(
			`SELECT next_fetch_date, url, value FROM sched_index WHERE crawl_id=? AND queue=?`,
			q.CrawlID, q.Queue,
		).WithContext(ctx).Iter()

		var nfd int64
		var url string
		var value []byte
		for iter.Scan(&nfd, &url, &value) {
			key := frontier.EncodeSchedulingKey(q, nfd, url)
			if !yield(frontier.KVEntry{Key: key, Value: bytes.Clone(value)}) {
				iter.Close()
				return false, nil
			}
		}
		return true, iter.Close()

	default:
		return true, fmt.Errorf("cassandra: unknown family %q", family)
	}
}

// DeleteRange implements frontier.KVStore. Like Iterate, it only
// supports the two range shapes the frontier core ever asks for: a
// single queue's range ([prefix(q), prefix(next q) or nil)) or a whole
// crawl's range ([esc(crawlID)_, prefix of the next crawl or nil)) —
// both always fall on queue-prefix boundaries, so each matching queue
// is deleted with one partition-scoped CQL DELETE (gc_grace_seconds=0
// on sched_index means these deletes don't linger as tombstones).
// Matching queues are found through queue_index, so a queue's
// queue_index row is removed only on the SCHED pass; range-delete URL
// before SCHED, as DeleteQueue and DeleteCrawl do.
func (s *Store) DeleteRange(ctx context.Context, family frontier.Family, startInclusive, endExclusive []byte) error {
	queues, err := s.queuesInRange(ctx, startInclusive, endExclusive)
	if err != nil {
		return err
	}
	for _, q := range queues {
		var stmt string
		switch family {
		case frontier.FamilyURL:
			stmt = `DELETE FROM url_index WHERE crawl_id=? AND queue=?`
		case frontier.FamilySched:
			stmt = `DELETE FROM sched_index WHERE crawl_id=? AND queue=?`
		default:
			return fmt.Errorf("cassandra: unknown family %q", family)
		}
		if err := s.session.Query(stmt, q.CrawlID, q.Queue).WithContext(ctx).Exec(); err != nil {
			return err
		}
		if family != frontier.FamilySched {
			continue
		}
		if err := s.session.Query(
			`DELETE FROM queue_index WHERE shard=? AND crawl_id=? AND queue=?`,
			queueIndexShard, q.CrawlID, q.Queue,
		).WithContext(ctx).Exec(); err != nil {
			return err
		}
		s.knownQueues.Remove(q.CrawlID + "\x00" + q.Queue)
	}
	return nil
}

// queuesInRange lists every queue_index entry whose encoded prefix
// falls in [start, end).
func (s *Store) queuesInRange(ctx context.Context, start, end []byte) ([]frontier.QueueWithinCrawl, error) {
	iter := s.session.Query(
		`SELECT crawl_id, queue FROM queue_index WHERE shard=?`, queueIndexShard,
	).WithContext(ctx).Iter()

	var crawlID, queue string
	var out []frontier.QueueWithinCrawl
	for iter.Scan(&crawlID, &queue) {
		q := frontier.QueueWithinCrawl{CrawlID: crawlID, Queue: queue}
		prefix := frontier.EncodeQueuePrefix(q)
		if bytes.Compare(prefix, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(prefix, end) >= 0 {
			continue
		}
		out = append(out, q)
	}
	return out, iter.Close()
}
