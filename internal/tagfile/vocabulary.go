package tagfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tagdeck/internal/logging"
	"tagdeck/internal/tagset"
)

const (
	// maxLineBytes bounds one tag line; no filesystem accepts a longer name.
	maxLineBytes    = 4096
	overlongPreview = 32
)

// Load reads one tag file. Lines that are not valid tags are returned
// separately so the caller can report them without losing the rest.
func Load(ref Ref) (tagset.TagSet, []string, error) {
	f, err := os.Open(ref.Path)
	if err != nil {
		return tagset.TagSet{}, nil, fmt.Errorf("open tag file: %w", err)
	}
	defer f.Close()

	var (
		lines    []string
		overlong []string
	)
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if len(line) > maxLineBytes {
				overlong = append(overlong, line[:overlongPreview]+"...")
			} else {
				lines = append(lines, strings.TrimRight(line, "\r\n"))
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tagset.TagSet{}, nil, fmt.Errorf("read tag file %s: %w", ref.Path, err)
		}
	}
	tags, invalid := tagset.FromLines(lines)
	return tags, append(invalid, overlong...), nil
}

// Vocabulary merges the tag files of a Resolved result into the set offered
// for autocomplete: the overriding file first, then appending files from the
// farthest to the nearest so nearer files land last. Files that disappeared or
// became unreadable since resolution are skipped with a warning. NotFound and
// Conflict results yield an empty vocabulary.
func (l *Locator) Vocabulary(ctx context.Context, res Result) tagset.TagSet {
	var vocab tagset.TagSet
	if res.Kind != Resolved {
		return vocab
	}
	logger := logging.WithContext(ctx, l.logger)

	refs := make([]Ref, 0, len(res.Appending)+1)
	if res.Overriding != nil {
		refs = append(refs, *res.Overriding)
	}
	for i := len(res.Appending) - 1; i >= 0; i-- {
		refs = append(refs, res.Appending[i])
	}

	for _, ref := range refs {
		tags, invalid, err := Load(ref)
		if err != nil {
			logging.WarnWithContext(logger, "tag file unreadable", "tagfile_load_failed",
				logging.String("path", ref.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the file still exists and is readable"),
				logging.String(logging.FieldImpact, "tags from this file are missing from autocomplete"))
			continue
		}
		if len(invalid) > 0 {
			logging.WarnWithContext(logger, "tag file has invalid lines", "tagfile_invalid_lines",
				logging.String("path", ref.Path),
				logging.Strings("lines", invalid),
				logging.String(logging.FieldErrorHint, "remove separators or reserved characters from these tags"),
				logging.String(logging.FieldImpact, "invalid lines were skipped"))
		}
		vocab = vocab.Union(tags)
	}
	return vocab
}

// Unknown returns the tags of s that the vocabulary does not contain, in order.
func Unknown(s, vocab tagset.TagSet) []string {
	return s.Difference(vocab).Tags()
}
