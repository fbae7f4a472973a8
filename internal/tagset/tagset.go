package tagset

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"tagdeck/internal/pathlimits"
)

var (
	// ErrEmptyTag is returned for a zero-length tag.
	ErrEmptyTag = errors.New("tag is empty")
	// ErrInvalidTag marks tags holding separators, control or reserved characters.
	ErrInvalidTag = errors.New("invalid tag")
)

// TagSet is an ordered sequence of distinct tags.
type TagSet struct {
	tags []string
}

// New builds a set from tags in order, skipping repeats. The first invalid
// tag aborts construction.
func New(tags ...string) (TagSet, error) {
	var s TagSet
	for _, tag := range tags {
		next, err := s.Add(tag)
		if err != nil {
			return TagSet{}, err
		}
		s = next
	}
	return s, nil
}

// MustNew is New for literals in tests and defaults; it panics on invalid input.
func MustNew(tags ...string) TagSet {
	s, err := New(tags...)
	if err != nil {
		panic(err)
	}
	return s
}

// FromLines parses tag file content: one tag per line, surrounding
// whitespace trimmed, blank lines and lines starting with '#' skipped.
// Invalid lines are returned separately instead of failing the whole file.
func FromLines(lines []string) (TagSet, []string) {
	var (
		s       TagSet
		invalid []string
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		next, err := s.Add(trimmed)
		if err != nil {
			invalid = append(invalid, trimmed)
			continue
		}
		s = next
	}
	return s, invalid
}

// Normalize returns the canonical (NFC) form of a tag.
func Normalize(tag string) string {
	return norm.NFC.String(tag)
}

// ValidateTag reports why tag cannot be stored, or nil.
func ValidateTag(tag string) error {
	if tag == "" {
		return ErrEmptyTag
	}
	for _, r := range tag {
		switch {
		case r == os.PathSeparator || r == '/':
			return fmt.Errorf("%w %q: contains path separator", ErrInvalidTag, tag)
		case unicode.IsControl(r):
			return fmt.Errorf("%w %q: contains control character %U", ErrInvalidTag, tag, r)
		case pathlimits.IsReserved(r):
			return fmt.Errorf("%w %q: contains reserved character %q", ErrInvalidTag, tag, r)
		}
	}
	return nil
}

// Len returns the number of tags.
func (s TagSet) Len() int { return len(s.tags) }

// IsEmpty reports whether the set holds no tags.
func (s TagSet) IsEmpty() bool { return len(s.tags) == 0 }

// Tags returns a copy of the tags in order.
func (s TagSet) Tags() []string {
	if len(s.tags) == 0 {
		return nil
	}
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// At returns the tag at position i.
func (s TagSet) At(i int) string { return s.tags[i] }

// Index returns the position of tag or -1.
func (s TagSet) Index(tag string) int {
	tag = Normalize(tag)
	for i, existing := range s.tags {
		if existing == tag {
			return i
		}
	}
	return -1
}

// Contains reports whether tag is a member.
func (s TagSet) Contains(tag string) bool {
	return s.Index(tag) >= 0
}

// Add appends tag unless already present.
func (s TagSet) Add(tag string) (TagSet, error) {
	tag = Normalize(tag)
	if err := ValidateTag(tag); err != nil {
		return s, err
	}
	if s.Contains(tag) {
		return s, nil
	}
	out := make([]string, len(s.tags), len(s.tags)+1)
	copy(out, s.tags)
	return TagSet{tags: append(out, tag)}, nil
}

// Remove drops tag if present.
func (s TagSet) Remove(tag string) TagSet {
	idx := s.Index(tag)
	if idx < 0 {
		return s
	}
	out := make([]string, 0, len(s.tags)-1)
	out = append(out, s.tags[:idx]...)
	out = append(out, s.tags[idx+1:]...)
	return TagSet{tags: out}
}

// Union keeps the receiver's order and appends tags from other that are
// not yet present, in other's order.
func (s TagSet) Union(other TagSet) TagSet {
	out := s.Tags()
	for _, tag := range other.tags {
		if !s.Contains(tag) {
			out = append(out, tag)
		}
	}
	return TagSet{tags: out}
}

// Difference returns the receiver's tags absent from other, in receiver order.
func (s TagSet) Difference(other TagSet) TagSet {
	var out []string
	for _, tag := range s.tags {
		if !other.Contains(tag) {
			out = append(out, tag)
		}
	}
	return TagSet{tags: out}
}

// AuthorFirst moves author to position 0 when present. Other tags keep
// their relative order.
func (s TagSet) AuthorFirst(author string) TagSet {
	idx := s.Index(author)
	if idx <= 0 {
		return s
	}
	out := make([]string, 0, len(s.tags))
	out = append(out, s.tags[idx])
	out = append(out, s.tags[:idx]...)
	out = append(out, s.tags[idx+1:]...)
	return TagSet{tags: out}
}

// Equal reports ordered equality.
func (s TagSet) Equal(other TagSet) bool {
	if len(s.tags) != len(other.tags) {
		return false
	}
	for i := range s.tags {
		if s.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

// SameMembers reports equality ignoring order.
func (s TagSet) SameMembers(other TagSet) bool {
	if len(s.tags) != len(other.tags) {
		return false
	}
	for _, tag := range s.tags {
		if !other.Contains(tag) {
			return false
		}
	}
	return true
}

// String renders the set for logs.
func (s TagSet) String() string {
	return "{" + strings.Join(s.tags, ", ") + "}"
}
