package frontier

import (
	"context"
	"testing"
)

func getAll(t *testing.T, f *Frontier, params GetParams) []URLInfo {
	t.Helper()
	out := make(chan URLInfo, 1024)
	if err := f.GetUrls(context.Background(), params, out); err != nil {
		t.Fatalf("GetUrls: %v", err)
	}
	var got []URLInfo
	for u := range out {
		got = append(got, u)
	}
	return got
}

func TestGetUrlsReturnsNewlyDiscoveredURL(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://example.com/a"}})

	got := getAll(t, f, GetParams{})
	if len(got) != 1 || got[0].URL != "http://example.com/a" {
		t.Fatalf("expected one dispatchable URL, got %v", got)
	}
}

func TestGetUrlsHidesHeldURLUntilDelayExpires(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://example.com/a"}})

	first := getAll(t, f, GetParams{})
	if len(first) != 1 {
		t.Fatalf("expected the first sweep to dispatch the URL, got %v", first)
	}

	second := getAll(t, f, GetParams{})
	if len(second) != 0 {
		t.Fatalf("expected the URL to be held on the immediately-following sweep, got %v", second)
	}
}

func TestGetUrlsHidesFutureScheduledURL(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://example.com/a"}})
	putAndWait(t, f, URLItem{Known: &URLInfo{URL: "http://example.com/a"}, RefetchableFromDate: nowEpochSeconds() + 3600})

	got := getAll(t, f, GetParams{})
	if len(got) != 0 {
		t.Fatalf("expected no dispatchable URLs while the only entry is scheduled in the future, got %v", got)
	}
}

func TestGetUrlsRoundRobinsAcrossQueues(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f,
		URLItem{Discovered: &URLInfo{URL: "http://a.com/1"}},
		URLItem{Discovered: &URLInfo{URL: "http://b.com/1"}},
	)

	first := getAll(t, f, GetParams{MaxQueues: 1})
	if len(first) != 1 {
		t.Fatalf("expected exactly one queue's worth of URLs, got %v", first)
	}
	second := getAll(t, f, GetParams{MaxQueues: 1})
	if len(second) != 1 {
		t.Fatalf("expected exactly one queue's worth of URLs, got %v", second)
	}
	if first[0].URL == second[0].URL {
		t.Fatalf("expected round-robin to visit the other queue next, got %q twice", first[0].URL)
	}
}

func TestGetUrlsRespectsMaxUrlsPerQueue(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f,
		URLItem{Discovered: &URLInfo{URL: "http://example.com/1"}},
		URLItem{Discovered: &URLInfo{URL: "http://example.com/2"}},
		URLItem{Discovered: &URLInfo{URL: "http://example.com/3"}},
	)

	got := getAll(t, f, GetParams{MaxUrlsPerQueue: 2})
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 URLs with MaxUrlsPerQueue=2, got %d: %v", len(got), got)
	}
}

func TestGetUrlsScopedToSingleQueue(t *testing.T) {
	f := openTestFrontier(t)
	putAndWait(t, f,
		URLItem{Discovered: &URLInfo{URL: "http://a.com/1"}},
		URLItem{Discovered: &URLInfo{URL: "http://b.com/1"}},
	)

	target := QueueWithinCrawl{CrawlID: DefaultCrawlID, Queue: "a.com"}
	got := getAll(t, f, GetParams{Queue: &target})
	if len(got) != 1 || got[0].URL != "http://a.com/1" {
		t.Fatalf("expected only a.com's URL, got %v", got)
	}
}
