// Package cassandra implements frontier.KVStore atop Apache Cassandra:
// a *gocql.ClusterConfig and *gocql.Session wrapped in a small struct,
// an LRU cache to avoid a schema round-trip on every write, and CQL
// queries built with gocql's placeholder binding rather than string
// formatting.
//
// Unlike memstore, this backend does not store the frontier's key
// bytes verbatim; url_index/sched_index are structured CQL tables
// partitioned by (crawl_id, queue) and clustered in scheduling order,
// with queue_index providing the globally ordered queue enumeration
// Cassandra's hash partitioner can't give directly (see schema.go's
// doc comment).
package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
	lru "github.com/hashicorp/golang-lru"

	"github.com/MattiSG/url-frontier"
)

// Store is a Cassandra-backed frontier.KVStore.
type Store struct {
	session *gocql.Session

	// knownQueues caches queue_index membership so NewStore's callers
	// don't pay an extra round trip registering a queue that's already
	// there.
	knownQueues *lru.Cache
}

// NewStore opens a Cassandra session against cfg and returns a Store
// ready for use. The keyspace and tables must already exist; see
// CreateSchema.
func NewStore(cfg frontier.FrontierConfig) (*Store, error) {
	cluster, err := ClusterConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra: failed to create session: %w", err)
	}
	cache, err := lru.New(4096)
	if err != nil {
		session.Close()
		return nil, err
	}
	store := &Store{session: session, knownQueues: cache}

	if cfg.Store.Purge {
		if err := store.Purge(context.Background()); err != nil {
			session.Close()
			return nil, fmt.Errorf("cassandra: store.purge failed: %w", err)
		}
	}
	return store, nil
}

func (s *Store) Close() error {
	s.session.Close()
	return nil
}

// Purge implements frontier.Purger by truncating every table this
// backend owns. Truncation, unlike a partition-by-partition DELETE, is
// a single statement per table regardless of how much data exists.
func (s *Store) Purge(ctx context.Context) error {
	s.knownQueues.Purge()
	for _, table := range []string{"url_index", "sched_index", "queue_index"} {
		if err := s.session.Query(`TRUNCATE ` + table).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("cassandra: failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// ensureQueueIndexed upserts (q.CrawlID, q.Queue) into queue_index if
// it isn't already known to this process. We don't use a logged batch
// here (CQL batches across partitions lose their main benefit,
// atomicity, on a single-partition-per-queue layout anyway), so there
// is a window, exactly like url_index/sched_index: Put calls this
// before writing the row, so a crash in between leaves a queue_index
// entry whose partitions are empty. Full-family scans walk such a
// queue and find nothing, so the window costs a wasted lookup, not
// correctness.
func (s *Store) ensureQueueIndexed(q frontier.QueueWithinCrawl) error {
	cacheKey := q.CrawlID + "\x00" + q.Queue
	if _, ok := s.knownQueues.Get(cacheKey); ok {
		return nil
	}
	if err := s.session.Query(
		`INSERT INTO queue_index (shard, crawl_id, queue) VALUES (?, ?, ?)`,
		queueIndexShard, q.CrawlID, q.Queue,
	).WithContext(context.Background()).Exec(); err != nil {
		return err
	}
	s.knownQueues.Add(cacheKey, true)
	return nil
}

func (s *Store) Get(ctx context.Context, family frontier.Family, key []byte) ([]byte, bool, error) {
	switch family {
	case frontier.FamilyURL:
		q, url, err := splitExistenceKey(key)
		if err != nil {
			return nil, false, err
		}
		var schedSet bool
		var nfd int64
		var value []byte
		err = s.session.Query(
			`SELECT sched_key_set, sched_key_nfd, value FROM url_index WHERE crawl_id=? AND queue=? AND url=?`,
			q.CrawlID, q.Queue, url,
		).WithContext(ctx).Scan(&schedSet, &nfd, &value)
		if err == gocql.ErrNotFound {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if !schedSet {
			return []byte{}, true, nil
		}
		return frontier.EncodeSchedulingKey(q, nfd, url), true, nil

	case frontier.FamilySched:
		q, nfd, url, err := splitSchedulingKey(key)
		if err != nil {
			return nil, false, err
		}
		var value []byte
		err = s.session.Query(
			`SELECT value FROM sched_index WHERE crawl_id=? AND queue=? AND next_fetch_date=? AND url=?`,
			q.CrawlID, q.Queue, nfd, url,
		).WithContext(ctx).Scan(&value)
		if err == gocql.ErrNotFound {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return value, true, nil

	default:
		return nil, false, fmt.Errorf("cassandra: unknown family %q", family)
	}
}

func (s *Store) Put(ctx context.Context, family frontier.Family, key, value []byte) error {
	switch family {
	case frontier.FamilyURL:
		q, url, err := splitExistenceKey(key)
		if err != nil {
			return err
		}
		if err := s.ensureQueueIndexed(q); err != nil {
			return err
		}
		if len(value) == 0 {
			return s.session.Query(
				`INSERT INTO url_index (crawl_id, queue, url, sched_key_set, sched_key_nfd, value) VALUES (?, ?, ?, false, 0, ?)`,
				q.CrawlID, q.Queue, url, []byte{},
			).WithContext(ctx).Exec()
		}
		sq, nfd, surl, err := splitSchedulingKey(value)
		if err != nil {
			return fmt.Errorf("cassandra: URL value must be a scheduling key: %w", err)
		}
		if sq != q || surl != url {
			return fmt.Errorf("cassandra: URL value's scheduling key does not match its own (q,url)")
		}
		return s.session.Query(
			`INSERT INTO url_index (crawl_id, queue, url, sched_key_set, sched_key_nfd, value) VALUES (?, ?, ?, true, ?, ?)`,
			q.CrawlID, q.Queue, url, nfd, []byte{},
		).WithContext(ctx).Exec()

	case frontier.FamilySched:
		q, nfd, url, err := splitSchedulingKey(key)
		if err != nil {
			return err
		}
		if err := s.ensureQueueIndexed(q); err != nil {
			return err
		}
		return s.session.Query(
			`INSERT INTO sched_index (crawl_id, queue, next_fetch_date, url, value) VALUES (?, ?, ?, ?, ?)`,
			q.CrawlID, q.Queue, nfd, url, value,
		).WithContext(ctx).Exec()

	default:
		return fmt.Errorf("cassandra: unknown family %q", family)
	}
}

func (s *Store) Delete(ctx context.Context, family frontier.Family, key []byte) error {
	switch family {
	case frontier.FamilyURL:
		q, url, err := splitExistenceKey(key)
		if err != nil {
			return err
		}
		return s.session.Query(
			`DELETE FROM url_index WHERE crawl_id=? AND queue=? AND url=?`, q.CrawlID, q.Queue, url,
		).WithContext(ctx).Exec()

	case frontier.FamilySched:
		q, nfd, url, err := splitSchedulingKey(key)
		if err != nil {
			return err
		}
		return s.session.Query(
			`DELETE FROM sched_index WHERE crawl_id=? AND queue=? AND next_fetch_date=? AND url=?`,
			q.CrawlID, q.Queue, nfd, url,
		).WithContext(ctx).Exec()

	default:
		return fmt.Errorf("cassandra: unknown family %q", family)
	}
}
