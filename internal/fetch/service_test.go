package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"tagdeck/internal/contenthash"
	"tagdeck/internal/fetchcache"
	"tagdeck/internal/logging"
	"tagdeck/internal/reconcile"
	"tagdeck/internal/tagset"
	"tagdeck/internal/testsupport"
)

type stubRemote struct {
	calls  int
	remote Remote
	err    error
	hook   func(ctx context.Context)
}

func (s *stubRemote) Lookup(ctx context.Context, hash string, progress func(float64)) (Remote, error) {
	s.calls++
	if s.hook != nil {
		s.hook(ctx)
	}
	if progress != nil {
		progress(1)
	}
	if s.err != nil {
		return Remote{}, s.err
	}
	out := s.remote
	if out.ContentHash == "" {
		out.ContentHash = hash
	}
	return out, nil
}

func mediaFile(t *testing.T, content string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.jpg")
	testsupport.WriteContent(t, path, content)
	hash, err := contenthash.File(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return path, hash
}

func openCache(t *testing.T) *fetchcache.Store {
	t.Helper()
	store, err := fetchcache.Open(filepath.Join(t.TempDir(), "fetch.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestServiceFetchStoresAndReusesCache(t *testing.T) {
	path, hash := mediaFile(t, "pixels")
	remote := &stubRemote{remote: Remote{Tags: []string{"b", "c"}, Source: "remote/1"}}
	cache := openCache(t)
	svc := NewService(remote, cache, logging.NewNop())

	var stages []Stage
	out, err := svc.Fetch(context.Background(), path, func(p Progress) { stages = append(stages, p.Stage) })
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if out.Cached || out.LocalHash != hash || out.Result.ContentHash != hash {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(stages) == 0 || stages[0] != StageHash || stages[len(stages)-1] != StageFetch {
		t.Fatalf("unexpected progress stages %v", stages)
	}

	again, err := svc.Fetch(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Cached || remote.calls != 1 {
		t.Fatalf("expected cache hit, cached=%v calls=%d", again.Cached, remote.calls)
	}
	if !reflect.DeepEqual(again.Result.RemoteTags.Tags(), []string{"b", "c"}) {
		t.Fatalf("unexpected cached tags %v", again.Result.RemoteTags.Tags())
	}

	rec, err := reconcile.Reconcile(tagset.MustNew("a", "b"), again.Result, again.LocalHash)
	if err != nil {
		t.Fatalf("cached result should verify: %v", err)
	}
	if !reflect.DeepEqual(rec.Diff.Added.Tags(), []string{"c"}) {
		t.Fatalf("unexpected diff %+v", rec.Diff)
	}
}

func TestServiceDoesNotCacheMismatchedHash(t *testing.T) {
	path, _ := mediaFile(t, "pixels")
	remote := &stubRemote{remote: Remote{ContentHash: "ffffffffffffffffffffffffffffffff", Tags: []string{"x"}}}
	cache := openCache(t)
	svc := NewService(remote, cache, logging.NewNop())

	out, err := svc.Fetch(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reconcile.Reconcile(tagset.TagSet{}, out.Result, out.LocalHash); !errors.Is(err, reconcile.ErrHashMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	entries, err := cache.List(context.Background())
	if err != nil || len(entries) != 0 {
		t.Fatalf("mismatched result must not be cached: %v %v", entries, err)
	}
}

func TestServiceStaleCacheEntryIsCaughtByReconcile(t *testing.T) {
	path, hash := mediaFile(t, "pixels")
	cache := openCache(t)
	if err := cache.Store(context.Background(), fetchcache.Entry{ContentHash: hash, Tags: []string{"cached"}, Source: "s"}); err != nil {
		t.Fatal(err)
	}
	remote := &stubRemote{}
	out, err := NewService(remote, cache, logging.NewNop()).Fetch(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Cached || remote.calls != 0 {
		t.Fatalf("expected cache hit without remote call")
	}
	// The file changes after the cached result was read.
	testsupport.WriteContent(t, path, "edited pixels")
	fresh, err := contenthash.File(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reconcile.Reconcile(tagset.TagSet{}, out.Result, fresh); !errors.Is(err, reconcile.ErrHashMismatch) {
		t.Fatalf("stale entry must be rejected, got %v", err)
	}
}

func TestServiceCancellationStoresNothing(t *testing.T) {
	path, _ := mediaFile(t, "pixels")
	cache := openCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	remote := &stubRemote{remote: Remote{Tags: []string{"x"}}, hook: func(context.Context) { cancel() }}

	out, err := NewService(remote, cache, logging.NewNop()).Fetch(ctx, path, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if !out.Result.RemoteTags.IsEmpty() || out.LocalHash != "" {
		t.Fatalf("cancelled fetch must return no result, got %+v", out)
	}
	entries, _ := cache.List(context.Background())
	if len(entries) != 0 {
		t.Fatalf("cancelled fetch must not write the cache, got %v", entries)
	}
}

func TestServicePropagatesNoMatch(t *testing.T) {
	path, _ := mediaFile(t, "pixels")
	remote := &stubRemote{err: ErrNoRemoteMatch}
	_, err := NewService(remote, nil, logging.NewNop()).Fetch(context.Background(), path, nil)
	if !errors.Is(err, ErrNoRemoteMatch) {
		t.Fatalf("expected ErrNoRemoteMatch, got %v", err)
	}
}

func TestServiceReportsInvalidRemoteTags(t *testing.T) {
	path, _ := mediaFile(t, "pixels")
	remote := &stubRemote{remote: Remote{Tags: []string{"ok", "bad/tag"}}}
	out, err := NewService(remote, nil, logging.NewNop()).Fetch(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Invalid, []string{"bad/tag"}) || !reflect.DeepEqual(out.Result.RemoteTags.Tags(), []string{"ok"}) {
		t.Fatalf("unexpected split %v / %v", out.Invalid, out.Result.RemoteTags.Tags())
	}
}

func TestServiceRejectsRemoteWithoutHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"tag_string":"injected other"}`))
	}))
	defer srv.Close()

	path, _ := mediaFile(t, "pixels")
	cache := openCache(t)
	svc := NewService(NewHTTPClient(srv.URL, "", "", srv.Client()), cache, logging.NewNop())

	out, err := svc.Fetch(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reconcile.Reconcile(tagset.MustNew("a"), out.Result, out.LocalHash); !errors.Is(err, reconcile.ErrHashMismatch) {
		t.Fatalf("expected mismatch for a remote without md5, got %v", err)
	}
	entries, err := cache.List(context.Background())
	if err != nil || len(entries) != 0 {
		t.Fatalf("unverified result must not be cached: %v %v", entries, err)
	}
}
