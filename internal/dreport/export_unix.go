//go:build unix

package dreport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// createInDir opens name relative to an open handle on dir, so a directory
// swapped in after validation cannot redirect the write.
func createInDir(dir, name, display string) (*os.File, error) {
	// #nosec G304 -- dir is cleaned and validated by exportFile
	dirHandle, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open report directory %s: %w", dir, err)
	}
	defer dirHandle.Close()

	flags := unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC | unix.O_CLOEXEC | unix.O_NOFOLLOW
	fd, err := unix.Openat(int(dirHandle.Fd()), name, flags, reportFileMode)
	if err != nil {
		return nil, fmt.Errorf("open report file %s: %w", display, err)
	}

	return os.NewFile(uintptr(fd), display), nil
}
