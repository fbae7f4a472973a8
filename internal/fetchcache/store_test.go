package fetchcache_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"tagdeck/internal/fetchcache"
)

func openStore(t *testing.T) *fetchcache.Store {
	t.Helper()
	store, err := fetchcache.Open(filepath.Join(t.TempDir(), "nested", "fetch.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreAndLookup(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	entry := fetchcache.Entry{
		ContentHash: "ABCDEF0123456789ABCDEF0123456789",
		Tags:        []string{"sky", "blue"},
		Source:      "https://booru.example/posts/1",
		FetchedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Store(ctx, entry); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := store.Lookup(ctx, "abcdef0123456789abcdef0123456789")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected cached entry")
	}
	if got.ContentHash != "abcdef0123456789abcdef0123456789" {
		t.Fatalf("hash not normalized: %q", got.ContentHash)
	}
	if !reflect.DeepEqual(got.Tags, entry.Tags) || got.Source != entry.Source || !got.FetchedAt.Equal(entry.FetchedAt) {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	store := openStore(t)
	got, err := store.Lookup(context.Background(), "00000000000000000000000000000000")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", got, err)
	}
}

func TestStoreReplacesExisting(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	hash := "11111111111111111111111111111111"
	if err := store.Store(ctx, fetchcache.Entry{ContentHash: hash, Tags: []string{"old"}, Source: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Store(ctx, fetchcache.Entry{ContentHash: hash, Tags: []string{"new"}, Source: "b"}); err != nil {
		t.Fatal(err)
	}
	got, err := store.Lookup(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Tags, []string{"new"}) || got.Source != "b" {
		t.Fatalf("entry not replaced: %+v", got)
	}
	entries, err := store.List(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry, got %d (%v)", len(entries), err)
	}
}

func TestListRemoveClearPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hashes := []string{
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		"cccccccccccccccccccccccccccccccc",
	}
	for i, hash := range hashes {
		entry := fetchcache.Entry{ContentHash: hash, Source: "s", FetchedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Store(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].ContentHash != hashes[2] {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if entries[0].Tags == nil || len(entries[0].Tags) != 0 {
		t.Fatalf("nil tags should round trip as empty, got %#v", entries[0].Tags)
	}

	removed, err := store.Remove(ctx, hashes[1])
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, hashes[1])
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}

	pruned, err := store.Prune(ctx, base.Add(time.Hour))
	if err != nil || pruned != 1 {
		t.Fatalf("Prune = %d, %v", pruned, err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil || cleared != 1 {
		t.Fatalf("Clear = %d, %v", cleared, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetch.db")
	ctx := context.Background()
	store, err := fetchcache.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Store(ctx, fetchcache.Entry{ContentHash: "dddddddddddddddddddddddddddddddd", Tags: []string{"x"}, Source: "s"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := fetchcache.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Lookup(ctx, "dddddddddddddddddddddddddddddddd")
	if err != nil || got == nil {
		t.Fatalf("entry lost across reopen: %+v, %v", got, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := fetchcache.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
