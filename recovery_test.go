package frontier

import (
	"context"
	"testing"

	"github.com/MattiSG/url-frontier/kvstore/memstore"
)

func TestRecoverRebuildsCountsFromExistingStore(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	f, err := Open(ctx, store)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://example.com/a"}})
	putAndWait(t, f, URLItem{Discovered: &URLInfo{URL: "http://example.com/b"}})
	putAndWait(t, f, URLItem{Known: &URLInfo{URL: "http://example.com/b"}, RefetchableFromDate: 0})

	// Reopen against the same underlying store, as if the process had
	// restarted: a fresh registry must be rebuilt entirely from it.
	f2, err := Open(ctx, store)
	if err != nil {
		t.Fatalf("Open on recovery: %v", err)
	}

	q := QueueWithinCrawl{CrawlID: DefaultCrawlID, Queue: "example.com"}
	meta, ok := f2.registry.Get(q)
	if !ok {
		t.Fatalf("expected queue to be rediscovered on recovery")
	}
	if meta.CountActive() != 1 {
		t.Fatalf("expected active=1 after recovery, got %d", meta.CountActive())
	}
	if meta.CountCompleted() != 1 {
		t.Fatalf("expected completed=1 after recovery, got %d", meta.CountCompleted())
	}
}

func TestRecoverFailsOnInconsistentStore(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	q := QueueWithinCrawl{CrawlID: DefaultCrawlID, Queue: "example.com"}
	// Write a SCHED entry with no corresponding URL entry, which
	// step B's active-count cross-check must catch.
	sKey := encodeScheduling(q, nowEpochSeconds(), "http://example.com/orphan")
	value, err := serializeURLInfo(&URLInfo{URL: "http://example.com/orphan"})
	if err != nil {
		t.Fatalf("serializeURLInfo: %v", err)
	}
	if err := store.Put(ctx, FamilySched, sKey, value); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := Open(ctx, store); err == nil {
		t.Fatalf("expected Open/Recover to fail on an inconsistent store")
	}
}

func TestRecoverEmptyStoreSucceeds(t *testing.T) {
	f, err := Open(context.Background(), memstore.New())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f.registry.Len() != 0 {
		t.Fatalf("expected no queues registered for an empty store")
	}
}
