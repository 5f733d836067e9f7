//go:build unix

package logger

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkWritable reports a readable reason up front instead of a bare open failure.
func checkWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	return nil
}
