package dmatch

import (
	"path/filepath"
	"strings"
)

// DuplicateMarker is inserted before the extension of duplicated files.
const DuplicateMarker = "_REPLACED"

// MatchJob describes a read-only search. Files are processed in order.
type MatchJob struct {
	Files         []string
	Pattern       string
	CaseSensitive bool
}

// ReplaceJob describes a search and replace. Replacement may reference
// capture groups as \1 or \g<name>; a dollar sign is plain text.
type ReplaceJob struct {
	MatchJob
	Replacement string
	// Duplicate writes to <stem>_REPLACED<ext> instead of overwriting.
	Duplicate bool
	// RenameFilenames applies the substitution to the base filename too.
	RenameFilenames bool
}

// LogSink receives human readable progress lines, one per call.
type LogSink interface {
	Append(line string)
}

// LogSinkFunc adapts a plain function to LogSink.
type LogSinkFunc func(line string)

// Append implements LogSink.
func (f LogSinkFunc) Append(line string) { f(line) }

// MultiSink fans every line out to each sink in order.
type MultiSink []LogSink

// Append implements LogSink.
func (m MultiSink) Append(line string) {
	for _, s := range m {
		s.Append(line)
	}
}

type discardSink struct{}

func (discardSink) Append(string) {}

// DuplicatePath returns path with DuplicateMarker inserted before the last
// extension of its base name, or appended when the name has no extension.
// Dots in directory names are ignored.
func DuplicatePath(path string) string {
	dir, base := filepath.Split(path)
	if pos := strings.LastIndex(base, "."); pos >= 0 {
		return dir + base[:pos] + DuplicateMarker + base[pos:]
	}
	return dir + base + DuplicateMarker
}
