//go:build !unix

package dreport

import (
	"fmt"
	"os"
	"path/filepath"
)

func createInDir(dir, name, display string) (*os.File, error) {
	// #nosec G304 -- validated by exportFile
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, reportFileMode)
	if err != nil {
		return nil, fmt.Errorf("open report file %s: %w", display, err)
	}
	return file, nil
}
