package frontier

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// sep is the field separator used throughout the key layout. It must
// be escaped inside identifiers, since it is also used to delimit
// CrawlID from Queue from the rest of the key.
const sep = '_'

const escaped = "%5F"

// escape replaces every sep byte in s with escaped, so that s can be
// embedded in a '_'-delimited key without being mistaken for a
// separator.
func escape(s string) string {
	if !strings.ContainsRune(s, sep) {
		return s
	}
	return strings.ReplaceAll(s, string(sep), escaped)
}

// unescape reverses escape. The escape is not injective: an input that
// already contained the sequence escaped comes back with sep in its
// place.
func unescape(s string) string {
	if !strings.Contains(s, escaped) {
		return s
	}
	return strings.ReplaceAll(s, escaped, string(sep))
}

// encodeQueuePrefix returns the byte prefix shared by every key
// (existence or scheduling) belonging to q.
func encodeQueuePrefix(q QueueWithinCrawl) []byte {
	var b bytes.Buffer
	b.WriteString(escape(q.CrawlID))
	b.WriteByte(sep)
	b.WriteString(escape(q.Queue))
	b.WriteByte(sep)
	return b.Bytes()
}

// encodeExistence builds the existence-family key for (q, url).
func encodeExistence(q QueueWithinCrawl, url string) []byte {
	var b bytes.Buffer
	b.Write(encodeQueuePrefix(q))
	b.WriteString(url)
	return b.Bytes()
}

// pad10Width is the fixed width nextFetchDate is padded to so
// lexicographic and numeric order agree.
const pad10Width = 10

// pad10 zero-pads an epoch-seconds value to pad10Width decimal digits.
func pad10(epochSeconds int64) string {
	if epochSeconds < 0 {
		epochSeconds = 0
	}
	s := strconv.FormatInt(epochSeconds, 10)
	if len(s) >= pad10Width {
		return s[len(s)-pad10Width:]
	}
	return strings.Repeat("0", pad10Width-len(s)) + s
}

// encodeScheduling builds the scheduling-family key for (q, url) at
// nextFetchDate.
func encodeScheduling(q QueueWithinCrawl, nextFetchDate int64, url string) []byte {
	var b bytes.Buffer
	b.Write(encodeQueuePrefix(q))
	b.WriteString(pad10(nextFetchDate))
	b.WriteByte(sep)
	b.WriteString(url)
	return b.Bytes()
}

// parseQueue recovers the QueueWithinCrawl a key (existence or
// scheduling) belongs to, by splitting on the first two unescaped
// separators and reversing the escape on each part.
func parseQueue(key []byte) (QueueWithinCrawl, error) {
	parts, _, err := splitFields(key, 2)
	if err != nil {
		return QueueWithinCrawl{}, err
	}
	return QueueWithinCrawl{CrawlID: unescape(parts[0]), Queue: unescape(parts[1])}, nil
}

// parseScheduling recovers (queue, nextFetchDate, url) from a whole
// scheduling-family key, queue prefix included.
func parseScheduling(key []byte) (q QueueWithinCrawl, nextFetchDate int64, url string, err error) {
	parts, rest, err := splitFields(key, 2)
	if err != nil {
		return q, 0, "", err
	}
	q = QueueWithinCrawl{CrawlID: unescape(parts[0]), Queue: unescape(parts[1])}
	if len(rest) < pad10Width+1 {
		return q, 0, "", fmt.Errorf("frontier: scheduling key too short: %q", key)
	}
	nextFetchDate, err = strconv.ParseInt(string(rest[:pad10Width]), 10, 64)
	if err != nil {
		return q, 0, "", fmt.Errorf("frontier: malformed nextFetchDate in key %q: %w", key, err)
	}
	if rest[pad10Width] != sep {
		return q, 0, "", fmt.Errorf("frontier: malformed scheduling key %q", key)
	}
	url = string(rest[pad10Width+1:])
	return q, nextFetchDate, url, nil
}

// splitFields splits key on the first n unescaped occurrences of sep,
// returning the n fields found and whatever bytes remain after the
// last separator consumed. An occurrence of sep is "unescaped" unless
// it is part of an escaped byte sequence; since escape() never
// produces a bare sep byte, any sep byte in the raw key is a genuine
// field delimiter.
func splitFields(key []byte, n int) (fields []string, rest []byte, err error) {
	fields = make([]string, 0, n)
	start := 0
	for i := 0; i < len(key) && len(fields) < n; i++ {
		if key[i] == sep {
			fields = append(fields, string(key[start:i]))
			start = i + 1
		}
	}
	if len(fields) < n {
		return nil, nil, fmt.Errorf("frontier: key %q has too few fields", key)
	}
	return fields, key[start:], nil
}

// Exported codec API, for KVStore backends that need to decode a key
// into structured fields rather than store it as an opaque byte
// string (e.g. kvstore/cassandra, which keys its tables on the
// decoded (CrawlID, Queue, URL) fields rather than on these bytes
// directly). Backends that do store the raw key bytes (e.g.
// kvstore/memstore) never need these.

// EncodeQueuePrefix is the exported form of encodeQueuePrefix.
func EncodeQueuePrefix(q QueueWithinCrawl) []byte { return encodeQueuePrefix(q) }

// EncodeExistenceKey is the exported form of encodeExistence.
func EncodeExistenceKey(q QueueWithinCrawl, url string) []byte { return encodeExistence(q, url) }

// EncodeSchedulingKey is the exported form of encodeScheduling.
func EncodeSchedulingKey(q QueueWithinCrawl, nextFetchDate int64, url string) []byte {
	return encodeScheduling(q, nextFetchDate, url)
}

// ParseQueue is the exported form of parseQueue.
func ParseQueue(key []byte) (QueueWithinCrawl, error) { return parseQueue(key) }

// ParseSchedulingKey is the exported form of parseScheduling.
func ParseSchedulingKey(key []byte) (q QueueWithinCrawl, nextFetchDate int64, url string, err error) {
	return parseScheduling(key)
}
