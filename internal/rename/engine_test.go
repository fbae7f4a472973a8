package rename

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"tagdeck/internal/logging"
	"tagdeck/internal/naming"
	"tagdeck/internal/pathlimits"
	"tagdeck/internal/tagset"
	"tagdeck/internal/testsupport"
)

var wide = pathlimits.Limits{MaxNameLen: 255, MaxPathLen: 4096}

func newEngine() *Engine {
	return NewEngine(logging.NewNop())
}

func plan(t *testing.T, original string, limits pathlimits.Limits, tags ...string) naming.Plan {
	t.Helper()
	p, err := naming.ForFile(original, tagset.MustNew(tags...), naming.Options{Limits: limits})
	if err != nil {
		t.Fatalf("ForFile: %v", err)
	}
	if info, err := Identify(original); err == nil {
		p.Source = info
	}
	return p
}

func TestApplyRenames(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.jpg")
	testsupport.WriteContent(t, original, "image")

	outcome := newEngine().Apply(context.Background(), plan(t, original, wide, "sky", "blue"))
	if outcome.State != Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	want := filepath.Join(dir, "sky blue.jpg")
	if outcome.NewPath != want {
		t.Fatalf("NewPath = %q, want %q", outcome.NewPath, want)
	}
	if _, err := os.Stat(original); !os.IsNotExist(err) {
		t.Fatalf("original should be gone, stat err = %v", err)
	}
	if data, err := os.ReadFile(want); err != nil || string(data) != "image" {
		t.Fatalf("renamed file content = %q, %v", data, err)
	}
}

func TestApplyPathTooLongTouchesNothing(t *testing.T) {
	// The directory does not exist: a length rejection must come before any
	// filesystem check.
	dir := filepath.Join(t.TempDir(), strings.Repeat("d", 300))
	original := filepath.Join(dir, "a.jpg")
	p := plan(t, original, pathlimits.Limits{MaxNameLen: 255, MaxPathLen: 259}, "x", "y")
	if p.Warnings.PathTooLong == nil {
		t.Fatal("expected plan to carry a path warning")
	}
	outcome := newEngine().Apply(context.Background(), p)
	if outcome.State != Rejected || outcome.Reason != PathTooLong {
		t.Fatalf("expected path_too_long rejection, got %s", outcome)
	}
}

func TestApplyPathTooLongWinsOverNameTooLong(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.jpg")
	testsupport.WriteContent(t, original, "x")
	p := plan(t, original, pathlimits.Limits{MaxNameLen: 2, MaxPathLen: 5}, "long", "tags")
	if p.Warnings.NameTooLong == nil || p.Warnings.PathTooLong == nil {
		t.Fatalf("expected both warnings, got %+v", p.Warnings)
	}
	outcome := newEngine().Apply(context.Background(), p)
	if outcome.Reason != PathTooLong {
		t.Fatalf("expected path_too_long first, got %s", outcome)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("rejected attempt must not rename: %v", err)
	}
}

func TestApplyNameTooLong(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.jpg")
	testsupport.WriteContent(t, original, "x")
	p := plan(t, original, pathlimits.Limits{MaxNameLen: 5, MaxPathLen: 4096}, "abc", "def")
	outcome := newEngine().Apply(context.Background(), p)
	if outcome.State != Rejected || outcome.Reason != NameTooLong {
		t.Fatalf("expected name_too_long, got %s", outcome)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("original must survive: %v", err)
	}
}

func TestApplySkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a b.jpg")
	testsupport.WriteContent(t, original, "x")
	outcome := newEngine().Apply(context.Background(), plan(t, original, wide, "a", "b"))
	if outcome.State != Skipped || outcome.Reason != Unchanged {
		t.Fatalf("expected skipped unchanged, got %s", outcome)
	}
}

func TestApplyNameCollision(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.jpg")
	occupied := filepath.Join(dir, "taken.jpg")
	testsupport.WriteContent(t, original, "mine")
	testsupport.WriteContent(t, occupied, "theirs")

	outcome := newEngine().Apply(context.Background(), plan(t, original, wide, "taken"))
	if outcome.State != Rejected || outcome.Reason != NameCollision {
		t.Fatalf("expected collision, got %s", outcome)
	}
	if data, _ := os.ReadFile(occupied); string(data) != "theirs" {
		t.Fatalf("existing file was overwritten: %q", data)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("original must survive: %v", err)
	}
}

func TestApplySourceVanished(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.jpg")
	testsupport.WriteContent(t, original, "x")
	p := plan(t, original, wide, "new")
	if err := os.Remove(original); err != nil {
		t.Fatal(err)
	}
	outcome := newEngine().Apply(context.Background(), p)
	if outcome.State != SourceVanished {
		t.Fatalf("expected source vanished, got %s", outcome)
	}
}

func TestApplySourceReplacedCountsAsVanished(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.jpg")
	testsupport.WriteContent(t, original, "x")
	p := plan(t, original, wide, "new")

	// Hold the old inode open by renaming it aside so the replacement
	// cannot reuse its number.
	if err := os.Rename(original, filepath.Join(dir, "aside.jpg")); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteContent(t, original, "impostor")

	outcome := newEngine().Apply(context.Background(), p)
	if outcome.State != SourceVanished {
		t.Fatalf("expected source vanished for substituted file, got %s", outcome)
	}
	if _, err := os.Stat(filepath.Join(dir, "new.jpg")); !os.IsNotExist(err) {
		t.Fatalf("substituted file must not be renamed, stat err = %v", err)
	}
}

func TestApplyPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	dir := t.TempDir()
	original := filepath.Join(dir, "old.jpg")
	testsupport.WriteContent(t, original, "x")
	p := plan(t, original, wide, "new")
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	outcome := newEngine().Apply(context.Background(), p)
	if outcome.State != Rejected || outcome.Reason != PermissionDenied {
		t.Fatalf("expected permission denied, got %s", outcome)
	}
	if !outcome.DisableDirectory {
		t.Fatal("permission denied must disable the directory")
	}
}

func TestApplyCaseOnlyRenameOnSameFile(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "sky.jpg")
	testsupport.WriteContent(t, original, "x")

	// On a case-sensitive filesystem this is an ordinary rename; on a
	// case-insensitive one the candidate resolves to the source itself and
	// must not be reported as a collision.
	outcome := newEngine().Apply(context.Background(), plan(t, original, wide, "Sky"))
	if outcome.State != Applied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Sky.jpg" {
		t.Fatalf("unexpected directory contents %v", entries)
	}
}

func TestApplyHardLinkIsCollision(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.jpg")
	testsupport.WriteContent(t, original, "x")
	if err := os.Link(original, filepath.Join(dir, "b.jpg")); err != nil {
		t.Skipf("hard links unavailable: %v", err)
	}

	outcome := newEngine().Apply(context.Background(), plan(t, original, wide, "b"))
	if outcome.State != Rejected || outcome.Reason != NameCollision {
		t.Fatalf("expected name collision, got %s", outcome)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("original must keep its name: %v", err)
	}
}

func TestApplyMultibyteNameTooLong(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows counts names in UTF-16 units")
	}
	dir := t.TempDir()
	original := filepath.Join(dir, "a.jpg")
	testsupport.WriteContent(t, original, "x")
	stem := strings.Repeat("日", 100)

	// Host limits catch the byte overflow before the filesystem is touched.
	outcome := newEngine().Apply(context.Background(), plan(t, original, pathlimits.Host(), stem))
	if outcome.State != Rejected || outcome.Reason != NameTooLong {
		t.Fatalf("expected name too long from host limits, got %s", outcome)
	}

	// Character-only limits let it through; the filesystem refusal still
	// maps to the same domain outcome.
	outcome = newEngine().Apply(context.Background(), plan(t, original, wide, stem))
	if outcome.State != Rejected || outcome.Reason != NameTooLong {
		t.Fatalf("expected name too long from the filesystem, got %s", outcome)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("rejected attempt must not rename: %v", err)
	}
}

func TestApplyCancelled(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "old.jpg")
	testsupport.WriteContent(t, original, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := newEngine().Apply(ctx, plan(t, original, wide, "new"))
	if outcome.State != Failed || outcome.Err == nil {
		t.Fatalf("expected failed with context error, got %s", outcome)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("cancelled attempt must not rename: %v", err)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Outcome{State: Applied, NewPath: "/x"}, "applied: /x"},
		{Outcome{State: Rejected, Reason: NameCollision, Detail: "x exists"}, "rejected (name_collision): x exists"},
		{Outcome{State: Skipped, Reason: Unchanged}, "skipped (unchanged)"},
		{Outcome{State: SourceVanished}, "source_vanished"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}
