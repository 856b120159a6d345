package frontier

import (
	"bytes"
	"testing"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{"plain", "has_underscore", "a_b_c", ""}
	for _, c := range cases {
		got := unescape(escape(c))
		if got != c {
			t.Errorf("escape/unescape round trip failed for %q: got %q", c, got)
		}
	}

	// escape leaves an existing "%5F" untouched, so unescape turns it into
	// a separator: such an identifier does not survive the round trip.
	if got := unescape(escape("%5F-looks-escaped-already")); got != "_-looks-escaped-already" {
		t.Errorf("expected a pre-existing %%5F to decode as a separator, got %q", got)
	}
}

func TestEncodeExistenceKeyOrdering(t *testing.T) {
	q := QueueWithinCrawl{CrawlID: "crawl", Queue: "example.com"}
	a := encodeExistence(q, "http://example.com/a")
	b := encodeExistence(q, "http://example.com/b")
	if bytes.Compare(a, b) >= 0 {
		t.Fatalf("expected a < b lexicographically, got a=%q b=%q", a, b)
	}
}

func TestPad10PreservesNumericOrder(t *testing.T) {
	times := []int64{0, 1, 9, 10, 100, 1000000000, 9999999999}
	for i := 0; i < len(times)-1; i++ {
		lo := pad10(times[i])
		hi := pad10(times[i+1])
		if len(lo) != pad10Width || len(hi) != pad10Width {
			t.Fatalf("pad10 did not produce fixed width: %q %q", lo, hi)
		}
		if lo >= hi {
			t.Fatalf("lexicographic order broken between %d and %d: %q >= %q", times[i], times[i+1], lo, hi)
		}
	}
}

func TestEncodeSchedulingOrdersByNextFetchDateThenURL(t *testing.T) {
	q := QueueWithinCrawl{CrawlID: "crawl", Queue: "example.com"}
	earlier := encodeScheduling(q, 1000, "http://example.com/z")
	later := encodeScheduling(q, 2000, "http://example.com/a")
	if bytes.Compare(earlier, later) >= 0 {
		t.Fatalf("expected earlier nextFetchDate to sort first regardless of URL")
	}

	sameDate1 := encodeScheduling(q, 1000, "http://example.com/a")
	sameDate2 := encodeScheduling(q, 1000, "http://example.com/b")
	if bytes.Compare(sameDate1, sameDate2) >= 0 {
		t.Fatalf("expected URL to break ties within the same nextFetchDate")
	}
}

func TestParseQueueRoundTrip(t *testing.T) {
	q := QueueWithinCrawl{CrawlID: "my_crawl", Queue: "ex_ample.com"}
	key := encodeExistence(q, "http://ex_ample.com/path")
	got, err := parseQueue(key)
	if err != nil {
		t.Fatalf("parseQueue: %v", err)
	}
	if got != q {
		t.Fatalf("parseQueue round trip mismatch: got %+v, want %+v", got, q)
	}
}

func TestParseSchedulingRoundTrip(t *testing.T) {
	q := QueueWithinCrawl{CrawlID: "crawl", Queue: "example.com"}
	key := encodeScheduling(q, 1234567890, "http://example.com/a")

	gotQ, gotNfd, gotURL, err := parseScheduling(key)
	if err != nil {
		t.Fatalf("parseScheduling: %v", err)
	}
	if gotQ != q || gotNfd != 1234567890 || gotURL != "http://example.com/a" {
		t.Fatalf("parseScheduling round trip mismatch: q=%+v nfd=%v url=%q", gotQ, gotNfd, gotURL)
	}
}

func TestQueuePrefixIsSharedByExistenceAndSchedulingKeys(t *testing.T) {
	q := QueueWithinCrawl{CrawlID: "crawl", Queue: "example.com"}
	prefix := encodeQueuePrefix(q)

	eKey := encodeExistence(q, "http://example.com/a")
	sKey := encodeScheduling(q, 100, "http://example.com/a")

	if !bytes.HasPrefix(eKey, prefix) {
		t.Fatalf("existence key %q does not start with queue prefix %q", eKey, prefix)
	}
	if !bytes.HasPrefix(sKey, prefix) {
		t.Fatalf("scheduling key %q does not start with queue prefix %q", sKey, prefix)
	}
}
