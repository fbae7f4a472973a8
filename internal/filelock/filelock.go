// Package filelock serializes rename attempts on the same media file across
// tagdeck processes using advisory lock files.
//
// Each media path maps to one lock file under the configured lock
// directory, named by a hash of the cleaned absolute path. The core
// packages stay lock-free; the command layer holds a lock around
// synthesis and rename.
package filelock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process holds the lock.
var ErrLocked = errors.New("media file is locked by another tagdeck process")

const retryDelay = 100 * time.Millisecond

// Manager hands out per-file locks rooted at one directory.
type Manager struct {
	dir string
}

// NewManager returns a Manager storing lock files in dir.
func NewManager(dir string) (*Manager, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("lock directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Lock is a held per-file lock.
type Lock struct {
	media string
	fl    *flock.Flock
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// MediaPath returns the media path the lock guards.
func (l *Lock) MediaPath() string {
	return l.media
}

// Release unlocks. Calling it more than once is harmless.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// PathFor returns the lock file path for mediaPath.
func (m *Manager) PathFor(mediaPath string) (string, error) {
	abs, err := filepath.Abs(mediaPath)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", mediaPath, err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(m.dir, hex.EncodeToString(sum[:16])+".lock"), nil
}

// TryAcquire takes the lock without waiting, returning ErrLocked when it is
// held elsewhere.
func (m *Manager) TryAcquire(mediaPath string) (*Lock, error) {
	fl, err := m.flockFor(mediaPath)
	if err != nil {
		return nil, err
	}
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{media: mediaPath, fl: fl}, nil
}

// Acquire waits for the lock until ctx is done.
func (m *Manager) Acquire(ctx context.Context, mediaPath string) (*Lock, error) {
	fl, err := m.flockFor(mediaPath)
	if err != nil {
		return nil, err
	}
	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{media: mediaPath, fl: fl}, nil
}

func (m *Manager) flockFor(mediaPath string) (*flock.Flock, error) {
	if m == nil {
		return nil, errors.New("lock manager is nil")
	}
	path, err := m.PathFor(mediaPath)
	if err != nil {
		return nil, err
	}
	return flock.New(path), nil
}
