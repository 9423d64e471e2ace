package dmatch

import "fmt"

// PatternError reports a search pattern that is not a valid regular
// expression. It is raised before any file is touched.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid search pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// FileAccessError reports a file that could not be read, locked or written.
// It aborts the running job.
type FileAccessError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// NameCollisionError reports a rename of From refused because Existing is
// already taken. It never aborts a job.
type NameCollisionError struct {
	From     string
	Existing string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name collision: %s already exists, %s not renamed", e.Existing, e.From)
}

// ReplacementError reports replacement text with a bad escape or a
// reference to a group the pattern does not define. Like PatternError it is
// raised before any file is touched.
type ReplacementError struct {
	Replacement string
	Err         error
}

func (e *ReplacementError) Error() string {
	return fmt.Sprintf("invalid replacement %q: %v", e.Replacement, e.Err)
}

func (e *ReplacementError) Unwrap() error { return e.Err }
