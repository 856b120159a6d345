package frontier

import (
	"context"
	"testing"
)

func TestListQueuesOnlyReturnsDispatchableQueues(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://ready.com/a"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://future.com/a"}})
	putAndWait(t, f, URLItem{Known: &URLInfo{URL: "http://future.com/a"}, RefetchableFromDate: nowEpochSeconds() + 3600})

	queues, err := f.ListQueues(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListQueues: %v", err)
	}
	if len(queues) != 1 || queues[0].Queue != "ready.com" {
		t.Fatalf("expected only ready.com to be dispatchable, got %v", queues)
	}
}

func TestListQueuesRespectsMax(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://a.com/1"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://b.com/1"}})

	queues, err := f.ListQueues(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListQueues: %v", err)
	}
	if len(queues) != 1 {
		t.Fatalf("expected max=1 to cap the result, got %v", queues)
	}
}

func TestGetStatsGlobalAggregatesAcrossQueues(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://a.com/1"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://b.com/1"}})
	putAndWait(t, f, URLItem{Known: &URLInfo{URL: "http://b.com/1"}, RefetchableFromDate: 0})

	stats, err := f.GetStats(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.NumberOfQueues != 2 {
		t.Fatalf("expected 2 queues, got %d", stats.NumberOfQueues)
	}
	if stats.Counts["active"] != 1 || stats.Counts["completed"] != 1 {
		t.Fatalf("expected active=1 completed=1, got %+v", stats.Counts)
	}
}

func TestGetStatsSingleQueue(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://a.com/1"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://b.com/1"}})

	q := QueueWithinCrawl{CrawlID: DefaultCrawlID, Queue: "a.com"}
	stats, err := f.GetStats(context.Background(), &q)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.NumberOfQueues != 1 || stats.Counts["active"] != 1 {
		t.Fatalf("expected single-queue stats scoped to a.com, got %+v", stats)
	}
}

func TestDeleteQueueRemovesEntriesAndReturnsCount(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://a.com/1"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://a.com/2"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://b.com/1"}})

	q := QueueWithinCrawl{CrawlID: DefaultCrawlID, Queue: "a.com"}
	removed, err := f.DeleteQueue(context.Background(), q)
	if err != nil {
		t.Fatalf("DeleteQueue: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, ok := f.registry.Get(q); ok {
		t.Fatalf("expected a.com to be gone from the registry")
	}

	// b.com must be untouched.
	stats, err := f.GetStats(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Counts["active"] != 1 {
		t.Fatalf("expected b.com's single URL to survive, got %+v", stats.Counts)
	}
}

func TestDeleteQueueUnknownIsNoOp(t *testing.T) {
	f := openTestFrontier(t)
	q := QueueWithinCrawl{CrawlID: DefaultCrawlID, Queue: "nope.com"}
	removed, err := f.DeleteQueue(context.Background(), q)
	if err != nil {
		t.Fatalf("DeleteQueue: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed for an unknown queue, got %d", removed)
	}
}

func TestDeleteCrawlRemovesOnlyThatCrawlsQueues(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://a.com/1", CrawlID: "crawlA"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://b.com/1", CrawlID: "crawlB"}})

	removed, err := f.DeleteCrawl(context.Background(), "crawlA")
	if err != nil {
		t.Fatalf("DeleteCrawl: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	qa := QueueWithinCrawl{CrawlID: "crawlA", Queue: "a.com"}
	qb := QueueWithinCrawl{CrawlID: "crawlB", Queue: "b.com"}
	if _, ok := f.registry.Get(qa); ok {
		t.Fatalf("expected crawlA's queue to be gone")
	}
	if _, ok := f.registry.Get(qb); !ok {
		t.Fatalf("expected crawlB's queue to survive")
	}
}

func TestByteRangeContains(t *testing.T) {
	start := []byte("b")
	end := []byte("d")
	cases := map[string]bool{
		"a": false,
		"b": true,
		"c": true,
		"d": false,
		"z": false,
	}
	for k, want := range cases {
		got := ByteRangeContains([]byte(k), start, end)
		if got != want {
			t.Errorf("ByteRangeContains(%q, %q, %q) = %v, want %v", k, start, end, got, want)
		}
	}
	if !ByteRangeContains([]byte("z"), start, nil) {
		t.Errorf("expected a nil end to mean unbounded")
	}
}
