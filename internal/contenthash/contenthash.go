// Package contenthash computes the content hash used to key remote tag
// lookups and to verify fetched results against the local file.
//
// The hash is MD5 of the file bytes, hex encoded. It identifies content for
// integrity comparison only and carries no security meaning.
package contenthash

import (
	"context"
	"crypto/md5" //nolint:gosec // content identifier, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const chunkSize = 256 * 1024

// Progress reports bytes hashed so far.
type Progress struct {
	Done  int64
	Total int64
}

// Fraction returns completion in [0,1]; unknown totals report 0.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// File hashes the file at path. progress, when non-nil, is called after every
// chunk. Cancellation is checked between chunks and returns ctx.Err() with no
// hash.
func File(ctx context.Context, path string, progress func(Progress)) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return Reader(ctx, f, info.Size(), progress)
}

// Reader hashes r, reporting progress against total.
func Reader(ctx context.Context, r io.Reader, total int64, progress func(Progress)) (string, error) {
	h := md5.New() //nolint:gosec
	buf := make([]byte, chunkSize)
	var done int64
	if progress != nil {
		progress(Progress{Done: 0, Total: total})
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			done += int64(n)
			if progress != nil {
				progress(Progress{Done: done, Total: total})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read: %w", readErr)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal compares two hex digests ignoring case and surrounding space.
func Equal(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// Valid reports whether s looks like an MD5 hex digest.
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != hex.EncodedLen(md5.Size) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
