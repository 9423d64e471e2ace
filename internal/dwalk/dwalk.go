// dwalk finds the files a search/replace job operates on: regular files
// under a root directory whose names end with one of a set of suffixes.
package dwalk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdefrancesco/dskSwap/internal/dsklog"
	"github.com/jdefrancesco/dskSwap/pkg/utils"

	"github.com/gobwas/glob"
)

// ErrNoSuffixes is returned when Locate is called without any suffix.
var ErrNoSuffixes = errors.New("at least one file suffix is required")

// InvalidPathError reports a root path that is missing or not a directory.
type InvalidPathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid path %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
}

func (e *InvalidPathError) Unwrap() error { return e.Err }

// Options controls which files Locate returns.
type Options struct {
	// Suffixes a file name must end with. Matching is case-sensitive.
	Suffixes []string
	// Recursive descends into subdirectories.
	Recursive bool
	// SkipHidden skips dotfiles and dot directories.
	SkipHidden bool
	// Exclude holds glob patterns matched against the slash separated path
	// relative to the root. Matching files and directories are skipped.
	Exclude []string
	// MaxFileSize in bytes. Zero means no limit.
	MaxFileSize uint64
}

// CheckRoot verifies root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &InvalidPathError{Path: root, Reason: "path does not exist", Err: err}
	}
	if !info.IsDir() {
		return &InvalidPathError{Path: root, Reason: "path is not a directory"}
	}
	return nil
}

// NormalizeSuffixes trims entries, drops empty ones, prefixes a missing "."
// and removes duplicates while keeping the first occurrence order.
func NormalizeSuffixes(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || s == "." {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// walker carries the compiled filter state for one Locate call.
type walker struct {
	root     string
	opts     Options
	suffixes []string
	exclude  []glob.Glob
	files    []string
}

// Locate returns the absolute paths of matching regular files under root in
// lexical order. Nothing matching yields an empty slice and a nil error.
func Locate(ctx context.Context, root string, opts Options) ([]string, error) {
	suffixes := NormalizeSuffixes(opts.Suffixes)
	if len(suffixes) == 0 {
		return nil, ErrNoSuffixes
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &InvalidPathError{Path: root, Reason: "cannot resolve absolute path", Err: err}
	}

	w := &walker{
		root:     absRoot,
		opts:     opts,
		suffixes: suffixes,
		files:    make([]string, 0),
	}
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		w.exclude = append(w.exclude, g)
	}

	if opts.Recursive {
		err = w.walkTree(ctx)
	} else {
		err = w.listDir(ctx)
	}
	if err != nil {
		return nil, err
	}

	dsklog.Dlogger.Debugf("Located %d files under %s (recursive=%t)", len(w.files), absRoot, opts.Recursive)
	return w.files, nil
}

// listDir handles the non-recursive case: immediate children only.
func (w *walker) listDir(ctx context.Context) error {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return &InvalidPathError{Path: w.root, Reason: "cannot read directory", Err: err}
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		w.consider(filepath.Join(w.root, entry.Name()), entry)
	}
	return nil
}

// walkTree handles the recursive case. Unreadable subdirectories are logged
// and skipped.
func (w *walker) walkTree(ctx context.Context) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == w.root {
				return &InvalidPathError{Path: w.root, Reason: "cannot read directory", Err: err}
			}
			dsklog.Dlogger.Errorf("Directory read error: %v", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == w.root {
			return nil
		}

		if d.IsDir() {
			if w.skipped(path, d.Name()) {
				dsklog.Dlogger.Debugf("Skipping directory: %s", path)
				return filepath.SkipDir
			}
			return nil
		}

		w.consider(path, d)
		return nil
	})
}

// consider appends path to the result when every filter accepts it.
func (w *walker) consider(path string, entry fs.DirEntry) {
	name := entry.Name()
	if !w.hasSuffix(name) {
		return
	}
	if w.skipped(path, name) {
		dsklog.Dlogger.Debugf("Skipping excluded file: %s", path)
		return
	}

	info, err := entry.Info()
	if err != nil {
		dsklog.Dlogger.Debugf("Error getting file info for %s: %v", path, err)
		return
	}

	// Skip non-regular files (sockets, pipes, device files, symlinks, etc.)
	if !info.Mode().IsRegular() {
		dsklog.Dlogger.Debugf("Skipping non-regular file: %s (mode: %s)", path, info.Mode())
		return
	}

	size := uint64(max(info.Size(), 0)) // #nosec G115
	if w.opts.MaxFileSize > 0 && size > w.opts.MaxFileSize {
		dsklog.Dlogger.Infof("File %s (%s) larger than maximum (%s). Skipping",
			path, utils.DisplaySize(size), utils.DisplaySize(w.opts.MaxFileSize))
		return
	}

	w.files = append(w.files, path)
}

func (w *walker) hasSuffix(name string) bool {
	for _, s := range w.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// skipped applies the hidden and exclude filters.
func (w *walker) skipped(path, name string) bool {
	if w.opts.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if len(w.exclude) == 0 {
		return false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, g := range w.exclude {
		if g.Match(rel) || g.Match(name) {
			return true
		}
	}
	return false
}
