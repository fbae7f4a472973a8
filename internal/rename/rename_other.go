//go:build !linux

package rename

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

func renameNoReplace(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return errTargetExists
	}
	return classifyRename(os.Rename(oldPath, newPath))
}

func classifyRename(err error) error {
	if err != nil && errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("%w: %w", errCrossDevice, err)
	}
	return err
}
