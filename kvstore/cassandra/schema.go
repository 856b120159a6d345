package cassandra

// schemaTemplate is rendered with the configured keyspace and
// replication factor, the same way the original walker repo rendered
// its own schema from a Go template.
//
// queue_index keeps a single-partition, clustering-ordered index of
// every (crawl_id, queue) pair this store has ever seen a URL for.
// Cassandra's partitioner hashes partition keys, so there is no way to
// range-scan url_index/sched_index across partitions in (crawl_id,
// queue) order directly; queue_index is what lets Recovery (which
// needs a single globally-ordered walk of each family) and the admin
// operations (which need "the next queue after q in sorted order")
// work against this backend. It is kept up to date from the same code
// path as url_index/sched_index writes (not in a Cassandra batch — see
// ensureQueueIndexed's doc comment on why that's an accepted window).
const schemaTemplate = `
CREATE KEYSPACE IF NOT EXISTS {{.Keyspace}}
WITH REPLICATION = { 'class': 'SimpleStrategy', 'replication_factor': {{.ReplicationFactor}} };

CREATE TABLE IF NOT EXISTS {{.Keyspace}}.queue_index (
	shard    text,
	crawl_id text,
	queue    text,
	PRIMARY KEY (shard, crawl_id, queue)
) WITH CLUSTERING ORDER BY (crawl_id ASC, queue ASC);

-- existence family: one row per URL. sched_key_set is false for a
-- completed (never-refetch) URL; otherwise sched_key_nfd is the
-- next_fetch_date of the sched_index row (crawl_id, queue,
-- next_fetch_date, url) this URL is currently represented by.
CREATE TABLE IF NOT EXISTS {{.Keyspace}}.url_index (
	crawl_id text,
	queue    text,
	url      text,
	sched_key_nfd  bigint,
	sched_key_set  boolean,
	value    blob,
	PRIMARY KEY ((crawl_id, queue), url)
) WITH CLUSTERING ORDER BY (url ASC);

-- scheduling family: one row per scheduled URL, clustered by
-- next_fetch_date then url so that a partition scan yields the
-- required dispatch order directly from CQL.
CREATE TABLE IF NOT EXISTS {{.Keyspace}}.sched_index (
	crawl_id        text,
	queue           text,
	next_fetch_date bigint,
	url             text,
	value           blob,
	PRIMARY KEY ((crawl_id, queue), next_fetch_date, url)
) WITH CLUSTERING ORDER BY (next_fetch_date ASC, url ASC)
	AND gc_grace_seconds = 0;
`

// queueIndexShard is the single fixed partition key queue_index rows
// share, so a single partition-scoped CQL query returns every queue in
// clustering (crawl_id, queue) order. Fine for the queue-count this
// core targets (one partition per host/crawl combination would defeat
// the purpose); a deployment with an enormous number of concurrent
// queues should shard this, which is why the column is named `shard`
// and not hardcoded into the primary key.
const queueIndexShard = "all"
