// Package dfs holds the file level primitives dskSwap needs: whole file
// reads, atomic rewrites, advisory locks and no-clobber renames.
package dfs

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jdefrancesco/dskSwap/internal/dsklog"

	"github.com/gofrs/flock"
	"lukechampine.com/blake3"
)

// DefaultFileMode is used for files written without a source to copy
// permissions from.
const DefaultFileMode fs.FileMode = 0o644

// ReadFile returns the raw bytes of path. Content is never decoded.
func ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- paths come from the locator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// FileMode returns the permission bits of path, or DefaultFileMode when the
// file cannot be stat'ed.
func FileMode(path string) fs.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return DefaultFileMode
	}
	return info.Mode().Perm()
}

// AtomicWrite writes data to path using a temp file in the same directory
// followed by a rename, so readers never observe a partially written file.
// If anything fails the previous content of path is left as it was.
//
// An existing path must be writable by the caller. The rename alone only
// needs write access to the directory, so a read-only file would otherwise
// be replaced.
func AtomicWrite(path string, data []byte, perm fs.FileMode) error {
	if err := checkWritable(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)

	tempFile, err := os.CreateTemp(dir, ".dskswap-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			if err := os.Remove(tempPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				dsklog.Dlogger.Debugf("Failed to remove temp file %s: %v", tempPath, err)
			}
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file for %s: %w", path, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to move temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// checkWritable fails when path is an existing regular file the caller may
// not open for writing. The file is not truncated.
func checkWritable(path string) error {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	// #nosec G304 -- paths come from the locator
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("file %s is not writable: %w", path, err)
	}
	return f.Close()
}

// FileLock is an advisory lock held on an existing file while it is
// rewritten. It never creates the file it locks.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock returns an unlocked FileLock for path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path, flock.SetFlag(os.O_RDONLY)),
		path:  path,
	}
}

// Lock blocks until the exclusive lock on the file is acquired.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// Exists reports whether anything (file, directory or dangling symlink)
// occupies path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// RenameNoReplace moves src to dst and fails with an error wrapping
// fs.ErrExist when dst is already taken. Existing files are never replaced.
func RenameNoReplace(src, dst string) error {
	if err := renameNoReplace(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("rename %s -> %s: %w", src, dst, fs.ErrExist)
		}
		return fmt.Errorf("rename %s -> %s: %w", src, dst, err)
	}
	return nil
}

// renameStat is the portable fallback: check then rename.
func renameStat(src, dst string) error {
	if Exists(dst) {
		return fs.ErrExist
	}
	return os.Rename(src, dst)
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
