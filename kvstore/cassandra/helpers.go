package cassandra

import "github.com/MattiSG/url-frontier"

// splitExistenceKey decodes an existence-family key into its queue and
// URL, the way frontier.ParseSchedulingKey does for scheduling keys
// (existence keys have no exported parser of their own since the
// in-process backends never need one; only this structured-row
// backend does).
func splitExistenceKey(key []byte) (q frontier.QueueWithinCrawl, url string, err error) {
	q, err = frontier.ParseQueue(key)
	if err != nil {
		return q, "", err
	}
	prefix := frontier.EncodeQueuePrefix(q)
	return q, string(key[len(prefix):]), nil
}

func splitSchedulingKey(key []byte) (q frontier.QueueWithinCrawl, nfd int64, url string, err error) {
	return frontier.ParseSchedulingKey(key)
}
