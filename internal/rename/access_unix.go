//go:build unix

package rename

import (
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

func checkWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		if err == unix.EACCES || err == unix.EROFS || err == unix.EPERM {
			return fmt.Errorf("access %s: %w", dir, fs.ErrPermission)
		}
		return fmt.Errorf("access %s: %w", dir, err)
	}
	return nil
}
