package naming

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tagdeck/internal/pathlimits"
	"tagdeck/internal/tagset"
)

var wide = pathlimits.Limits{MaxNameLen: 255, MaxPathLen: 4096}

func TestSynthesizeJoinsTagsAndKeepsExtension(t *testing.T) {
	plan, err := Synthesize("/media/old.JPG", tagset.MustNew("sky", "blue", "artist"), ".JPG", Options{Limits: wide})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if plan.CandidateName != "sky blue artist.JPG" {
		t.Fatalf("unexpected name %q", plan.CandidateName)
	}
	if plan.CandidatePath != filepath.Join("/media", "sky blue artist.JPG") {
		t.Fatalf("unexpected path %q", plan.CandidatePath)
	}
	if plan.Warnings.Any() {
		t.Fatalf("expected no warnings, got %+v", plan.Warnings)
	}
}

func TestSynthesizeAuthorFirst(t *testing.T) {
	tags := tagset.MustNew("sky", "blue", "artist")
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"disabled", Options{Author: "artist", Limits: wide}, "sky blue artist"},
		{"enabled", Options{AuthorFirst: true, Author: "artist", Limits: wide}, "artist sky blue"},
		{"author absent", Options{AuthorFirst: true, Author: "nobody", Limits: wide}, "sky blue artist"},
		{"no author configured", Options{AuthorFirst: true, Limits: wide}, "sky blue artist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Synthesize("/m/x.png", tags, ".png", tt.opts)
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			if plan.CandidateName != tt.want+".png" {
				t.Fatalf("got %q, want %q", plan.CandidateName, tt.want+".png")
			}
		})
	}
}

func TestSynthesizeNameLengthBoundary(t *testing.T) {
	limits := pathlimits.Limits{MaxNameLen: 10, MaxPathLen: 4096}

	exact := tagset.MustNew("abcd", "efghi") // "abcd efghi" is 10 characters
	plan, err := Synthesize("/m/x.jpg", exact, ".jpg", Options{Limits: limits})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Warnings.NameTooLong != nil {
		t.Fatalf("stem at the limit must not warn: %+v", plan.Warnings.NameTooLong)
	}

	over := tagset.MustNew("abcd", "efghij")
	plan, err = Synthesize("/m/x.jpg", over, ".jpg", Options{Limits: limits})
	if err != nil {
		t.Fatal(err)
	}
	w := plan.Warnings.NameTooLong
	if w == nil || w.Actual != 11 || w.Max != 10 {
		t.Fatalf("expected 11/10 warning, got %+v", w)
	}
	if plan.CandidateName != "abcd efghij.jpg" {
		t.Fatalf("over-length candidate must be returned intact, got %q", plan.CandidateName)
	}
}

func TestSynthesizeCountsCharactersNotBytes(t *testing.T) {
	limits := pathlimits.Limits{MaxNameLen: 3, MaxPathLen: 4096}
	plan, err := Synthesize("/m/x.jpg", tagset.MustNew("日本語"), ".jpg", Options{Limits: limits})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Warnings.NameTooLong != nil {
		t.Fatalf("three characters must fit a limit of three: %+v", plan.Warnings.NameTooLong)
	}
}

func TestSynthesizeChecksBytesOnByteCountedHosts(t *testing.T) {
	stem := strings.Repeat("日", 100)
	plan, err := Synthesize("/m/x.jpg", tagset.MustNew(stem), ".jpg", Options{Limits: pathlimits.For("linux")})
	if err != nil {
		t.Fatal(err)
	}
	w := plan.Warnings.NameTooLong
	if w == nil || w.Actual != 300 || w.Max != 255 || w.Unit != pathlimits.Bytes {
		t.Fatalf("expected a 300 byte warning, got %+v", w)
	}
	if w.String() != "300 bytes, limit 255" {
		t.Fatalf("unexpected warning text %q", w.String())
	}

	plan, err = Synthesize("/m/x.jpg", tagset.MustNew(stem), ".jpg", Options{Limits: pathlimits.For("windows")})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Warnings.NameTooLong != nil {
		t.Fatalf("character-counted hosts must accept 100 characters: %+v", plan.Warnings.NameTooLong)
	}
}

func TestSynthesizePathTooLong(t *testing.T) {
	dir := "/" + strings.Repeat("d", 280)
	limits := pathlimits.Limits{MaxNameLen: 255, MaxPathLen: 259}
	plan, err := Synthesize(filepath.Join(dir, "a.jpg"), tagset.MustNew("tag"), ".jpg", Options{Limits: limits})
	if err != nil {
		t.Fatal(err)
	}
	w := plan.Warnings.PathTooLong
	if w == nil || w.Max != 259 || w.Actual != pathlimits.PathLen(plan.CandidatePath) {
		t.Fatalf("expected path warning, got %+v", w)
	}
	if plan.Warnings.NameTooLong != nil {
		t.Fatal("short stem must not raise a name warning")
	}
}

func TestSynthesizeRejectsUnencodable(t *testing.T) {
	tests := []struct {
		name string
		tags tagset.TagSet
		ext  string
		want error
	}{
		{"empty set", tagset.TagSet{}, ".jpg", ErrEmptyTagSet},
		{"separator in tag", tagset.MustNew("blue sky"), ".jpg", ErrUnencodableTag},
		{"dot without extension", tagset.MustNew("v1.2"), "", ErrUnencodableTag},
		{"double extension", tagset.MustNew("a"), ".tar.gz", ErrInvalidExtension},
		{"bare dot", tagset.MustNew("a"), ".", ErrInvalidExtension},
		{"missing dot", tagset.MustNew("a"), "jpg", ErrInvalidExtension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize("/m/x", tt.tags, tt.ext, Options{Limits: wide})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	sets := [][]string{
		{"a"},
		{"sky", "blue", "artist"},
		{"v1.2", "release"},
		{".hidden", "x"},
		{"日本語", "café", "tag-with_dash"},
	}
	for _, tags := range sets {
		for _, ext := range []string{".jpg", ".PNG", ""} {
			in := tagset.MustNew(tags...)
			plan, err := Synthesize("/m/orig.bin", in, ext, Options{Limits: wide})
			if errors.Is(err, ErrUnencodableTag) && ext == "" {
				continue
			}
			if err != nil {
				t.Fatalf("Synthesize(%v, %q): %v", tags, ext, err)
			}
			got, gotExt, invalid := Parse(plan.CandidateName)
			if !got.Equal(in) || gotExt != ext || len(invalid) != 0 {
				t.Fatalf("round trip %v %q -> %q -> %v %q %v", tags, ext, plan.CandidateName, got.Tags(), gotExt, invalid)
			}
		}
	}
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	tags := tagset.MustNew("c", "a", "b")
	first, err := Synthesize("/m/x.jpg", tags, ".jpg", Options{Limits: wide})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Synthesize("/m/x.jpg", tags, ".jpg", Options{Limits: wide})
	if err != nil {
		t.Fatal(err)
	}
	if first.CandidateName != second.CandidateName || first.CandidatePath != second.CandidatePath {
		t.Fatalf("synthesis not deterministic: %q vs %q", first.CandidateName, second.CandidateName)
	}
}

func TestParseSkipsEmptyFieldsAndRepeats(t *testing.T) {
	tags, ext, invalid := Parse("/some/dir/a  b a  c.jpeg")
	if !reflect.DeepEqual(tags.Tags(), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected tags %v", tags.Tags())
	}
	if ext != ".jpeg" || len(invalid) != 0 {
		t.Fatalf("unexpected ext %q invalid %v", ext, invalid)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in, stem, ext string
	}{
		{"a b.jpg", "a b", ".jpg"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{".hidden", ".hidden", ""},
		{".hidden.png", ".hidden", ".png"},
		{"noext", "noext", ""},
	}
	for _, tt := range tests {
		stem, ext := Split(tt.in)
		if stem != tt.stem || ext != tt.ext {
			t.Fatalf("Split(%q) = %q, %q", tt.in, stem, ext)
		}
	}
}

func TestForFileKeepsOriginalExtension(t *testing.T) {
	plan, err := ForFile("/m/old name.WebM", tagset.MustNew("new"), Options{Limits: wide})
	if err != nil {
		t.Fatal(err)
	}
	if plan.CandidateName != "new.WebM" {
		t.Fatalf("unexpected name %q", plan.CandidateName)
	}
	if plan.Unchanged() {
		t.Fatal("plan should not be unchanged")
	}
}
