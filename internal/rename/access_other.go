//go:build !unix

package rename

import "os"

func checkWritable(dir string) error {
	tmp, err := os.CreateTemp(dir, ".tagdeck-tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}
