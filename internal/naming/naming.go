package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tagdeck/internal/pathlimits"
	"tagdeck/internal/tagset"
)

// Separator joins tags in a filename stem.
const Separator = " "

var (
	// ErrEmptyTagSet is returned when there is nothing to name the file after.
	ErrEmptyTagSet = errors.New("tag set is empty")
	// ErrUnencodableTag marks a tag the filename cannot carry losslessly.
	ErrUnencodableTag = errors.New("tag cannot be encoded in a filename")
	// ErrInvalidExtension marks an extension that would change how the stem parses.
	ErrInvalidExtension = errors.New("invalid extension")
)

// LengthWarning records an exceeded limit. Unit is characters unless the
// name only overflows a byte-counted filesystem ceiling.
type LengthWarning struct {
	Actual int
	Max    int
	Unit   pathlimits.Unit
}

func (w LengthWarning) String() string {
	unit := w.Unit
	if unit == "" {
		unit = pathlimits.Characters
	}
	return fmt.Sprintf("%d %s, limit %d", w.Actual, unit, w.Max)
}

// Warnings flags limits the candidate exceeds. Nil means within limits.
type Warnings struct {
	NameTooLong *LengthWarning
	PathTooLong *LengthWarning
}

// Any reports whether any limit was exceeded.
func (w Warnings) Any() bool {
	return w.NameTooLong != nil || w.PathTooLong != nil
}

// Plan is a proposed rename. Source optionally records the identity of the
// original file at planning time so a later commit can detect substitution.
type Plan struct {
	OriginalPath  string
	CandidateName string
	CandidatePath string
	Tags          tagset.TagSet
	Source        os.FileInfo
	Warnings      Warnings
}

// Unchanged reports whether the candidate is the original path.
func (p Plan) Unchanged() bool {
	return p.CandidatePath == p.OriginalPath
}

// Options tune Synthesize.
type Options struct {
	AuthorFirst bool
	Author      string
	Limits      pathlimits.Limits
}

// Synthesize builds the candidate filename for tags next to originalPath.
// The over-length candidate is still returned with its warnings set.
func Synthesize(originalPath string, tags tagset.TagSet, ext string, opts Options) (Plan, error) {
	if tags.IsEmpty() {
		return Plan{}, ErrEmptyTagSet
	}
	if err := validateExtension(ext); err != nil {
		return Plan{}, err
	}
	if opts.AuthorFirst && opts.Author != "" {
		tags = tags.AuthorFirst(opts.Author)
	}

	ordered := tags.Tags()
	for _, tag := range ordered {
		if err := encodable(tag); err != nil {
			return Plan{}, err
		}
	}
	stem := strings.Join(ordered, Separator)
	name := stem + ext

	if gotStem, gotExt := Split(name); gotStem != stem || gotExt != ext {
		return Plan{}, fmt.Errorf("%w: %q would parse with extension %q", ErrUnencodableTag, name, gotExt)
	}

	candidate := filepath.Join(filepath.Dir(originalPath), name)
	plan := Plan{
		OriginalPath:  originalPath,
		CandidateName: name,
		CandidatePath: candidate,
		Tags:          tags,
	}
	limits := opts.Limits
	if n, unit, over := limits.Exceeds(stem, limits.MaxNameLen); over {
		plan.Warnings.NameTooLong = &LengthWarning{Actual: n, Max: limits.MaxNameLen, Unit: unit}
	}
	if n, unit, over := limits.Exceeds(candidate, limits.MaxPathLen); over {
		plan.Warnings.PathTooLong = &LengthWarning{Actual: n, Max: limits.MaxPathLen, Unit: unit}
	}
	return plan, nil
}

// ForFile synthesizes a plan keeping the extension of originalPath.
func ForFile(originalPath string, tags tagset.TagSet, opts Options) (Plan, error) {
	_, ext := Split(filepath.Base(originalPath))
	return Synthesize(originalPath, tags, ext, opts)
}

// Parse recovers the tag set and extension from a filename. Empty fields
// are skipped and repeats collapse to their first occurrence. Fields that
// are not valid tags are returned in invalid.
func Parse(filename string) (tags tagset.TagSet, ext string, invalid []string) {
	stem, ext := Split(filepath.Base(filename))
	for _, field := range strings.Split(stem, Separator) {
		if field == "" {
			continue
		}
		next, err := tags.Add(field)
		if err != nil {
			invalid = append(invalid, field)
			continue
		}
		tags = next
	}
	return tags, ext, invalid
}

// Split separates name at its last dot. Names whose only dot is the leading
// one have no extension.
func Split(name string) (stem, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

func encodable(tag string) error {
	if err := tagset.ValidateTag(tag); err != nil {
		return fmt.Errorf("%w: %w", ErrUnencodableTag, err)
	}
	if strings.Contains(tag, Separator) {
		return fmt.Errorf("%w: %q contains the separator", ErrUnencodableTag, tag)
	}
	if tagset.Normalize(tag) != tag {
		return fmt.Errorf("%w: %q is not in canonical form", ErrUnencodableTag, tag)
	}
	return nil
}

func validateExtension(ext string) error {
	if ext == "" {
		return nil
	}
	if !strings.HasPrefix(ext, ".") || strings.Count(ext, ".") != 1 || len(ext) == 1 {
		return fmt.Errorf("%w %q", ErrInvalidExtension, ext)
	}
	if strings.Contains(ext, Separator) || pathlimits.ContainsReserved(ext) || strings.ContainsRune(ext, os.PathSeparator) {
		return fmt.Errorf("%w %q", ErrInvalidExtension, ext)
	}
	return nil
}
