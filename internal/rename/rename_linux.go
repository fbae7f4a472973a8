//go:build linux

package rename

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func renameNoReplace(oldPath, newPath string) error {
	err := unix.Renameat2(unix.AT_FDCWD, oldPath, unix.AT_FDCWD, newPath, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EEXIST):
		return errTargetExists
	case errors.Is(err, unix.EXDEV):
		return errCrossDevice
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL):
		// Kernel or filesystem without RENAME_NOREPLACE.
		return renameChecked(oldPath, newPath)
	default:
		return &os.LinkError{Op: "renameat2", Old: oldPath, New: newPath, Err: err}
	}
}

func renameChecked(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return errTargetExists
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if errors.Is(err, unix.EXDEV) {
			return fmt.Errorf("%w: %w", errCrossDevice, err)
		}
		return err
	}
	return nil
}
