// Package dmatch is the search/replace engine. It matches a regular
// expression against raw file bytes and base filenames, and can rewrite
// content and rename files in place or into duplicates.
//
// File content is never decoded. Content patterns work on bytes: \xff
// matches the byte 0xff, a multi-byte literal matches its UTF-8 encoding and
// case folding is ASCII only. Filenames are matched as text. Binary data
// passes through untouched outside of matches.
package dmatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jdefrancesco/dskSwap/internal/dfs"
	"github.com/jdefrancesco/dskSwap/internal/dreport"
	"github.com/jdefrancesco/dskSwap/internal/dsklog"

	"github.com/sirupsen/logrus"
)

// Compile builds the regexp used on filenames. Matching ignores case
// unless caseSensitive is set.
func Compile(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	return compileExpr(pattern, pattern, caseSensitive)
}

// compileExpr compiles expr, reporting errors against the user's pattern.
func compileExpr(expr, pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// matchers compiles the filename and content forms of a pattern.
func matchers(pattern string, caseSensitive bool) (*regexp.Regexp, *contentMatcher, error) {
	nameRe, err := Compile(pattern, caseSensitive)
	if err != nil {
		return nil, nil, err
	}
	content, err := compileContent(pattern, caseSensitive)
	if err != nil {
		return nil, nil, err
	}
	return nameRe, content, nil
}

// countMatches returns the number of non-overlapping matches in b. An empty
// match right after the end of the previous match is not counted, the same
// rule ReplaceAll uses, so counts always equal the substitutions made.
func countMatches(re *regexp.Regexp, b []byte) int {
	return len(re.FindAllIndex(b, -1))
}

// Search counts pattern matches in the filename and content of every file
// in job. Nothing on disk is modified. An unreadable file aborts the job;
// the report built so far is returned along with the error.
func Search(ctx context.Context, job MatchJob, sink LogSink) (*dreport.Report, error) {
	if sink == nil {
		sink = discardSink{}
	}

	nameRe, content, err := matchers(job.Pattern, job.CaseSensitive)
	if err != nil {
		return nil, err
	}

	report := dreport.New(dreport.ModeSearch, job.Pattern, job.CaseSensitive)
	log := dsklog.Dlogger.WithFields(logrus.Fields{"job": report.JobID, "mode": report.Mode})
	log.Infof("Searching %d files for %q", len(job.Files), job.Pattern)

	for _, path := range job.Files {
		if err := ctx.Err(); err != nil {
			report.Finish()
			return report, err
		}

		nameMatches := countMatches(nameRe, []byte(filepath.Base(path)))
		if nameMatches > 0 {
			sink.Append(fmt.Sprintf("%d matches in filename: %s", nameMatches, path))
		}

		data, err := dfs.ReadFile(path)
		if err != nil {
			log.Errorf("Search aborted: %v", err)
			report.Finish()
			return report, &FileAccessError{Path: path, Op: "read", Err: err}
		}

		contentMatches := content.Count(data)
		sink.Append(fmt.Sprintf("%d matches in file: %s", contentMatches, path))

		report.Add(dreport.FileReport{
			Path:            path,
			FilenameMatches: nameMatches,
			ContentMatches:  contentMatches,
		})
	}

	report.Finish()
	sink.Append(report.Summary())
	log.Infof("Search finished: %d matches in %d files", report.TotalMatches, report.FileCount)
	return report, nil
}

// Replace substitutes every match in each file of job and writes the result
// either over the file or into its duplicate, then optionally renames it.
//
// Counts in the returned report describe the original content and names.
// A read or write failure aborts the job; a refused rename is recorded and
// processing continues.
func Replace(ctx context.Context, job ReplaceJob, sink LogSink) (*dreport.Report, error) {
	if sink == nil {
		sink = discardSink{}
	}

	nameRe, content, err := matchers(job.Pattern, job.CaseSensitive)
	if err != nil {
		return nil, err
	}
	contentTmpl, err := translateReplacement(job.Replacement, content.re, true)
	if err != nil {
		return nil, &ReplacementError{Replacement: job.Replacement, Err: err}
	}
	nameTmpl, err := translateReplacement(job.Replacement, nameRe, false)
	if err != nil {
		return nil, &ReplacementError{Replacement: job.Replacement, Err: err}
	}

	report := dreport.New(dreport.ModeReplace, job.Pattern, job.CaseSensitive)
	report.Replacement = job.Replacement
	log := dsklog.Dlogger.WithFields(logrus.Fields{"job": report.JobID, "mode": report.Mode})
	log.Infof("Replacing %q with %q in %d files (duplicate=%t rename=%t)",
		job.Pattern, job.Replacement, len(job.Files), job.Duplicate, job.RenameFilenames)

	r := replacer{
		nameRe:      nameRe,
		content:     content,
		nameTmpl:    nameTmpl,
		contentTmpl: contentTmpl,
		job:         job,
		sink:        sink,
		log:         log,
	}
	for _, path := range job.Files {
		if err := ctx.Err(); err != nil {
			r.abort(report, err)
			return report, err
		}

		fr, err := r.rewrite(path)
		if err != nil {
			r.abort(report, err)
			return report, err
		}

		if job.RenameFilenames {
			if err := r.rename(path, &fr); err != nil {
				var collision *NameCollisionError
				if errors.As(err, &collision) {
					report.AddCollision(dreport.Collision{From: collision.From, Existing: collision.Existing})
				}
				fr.RenameError = err.Error()
				sink.Append(err.Error())
				log.Warn(err)
			}
		}

		report.Add(fr)
	}

	report.Finish()
	sink.Append(fmt.Sprintf("Replaced %q %d times in %d files.", job.Pattern, report.TotalMatches, report.FileCount))
	if n := len(report.Collisions); n > 0 {
		sink.Append(fmt.Sprintf("%d files could not be renamed.", n))
	}
	log.Infof("Replace finished: %d matches in %d files, %d collisions",
		report.TotalMatches, report.FileCount, len(report.Collisions))
	return report, nil
}

// replacer carries the per job state of Replace.
type replacer struct {
	nameRe      *regexp.Regexp
	content     *contentMatcher
	nameTmpl    string
	contentTmpl string
	job         ReplaceJob
	sink        LogSink
	log         *logrus.Entry
}

// rewrite reads path, substitutes all matches in one pass over the original
// bytes and writes the result to the job target.
func (r *replacer) rewrite(path string) (dreport.FileReport, error) {
	lock := dfs.NewFileLock(path)
	if err := lock.Lock(); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return dreport.FileReport{}, &FileAccessError{Path: path, Op: "open", Err: err}
		}
		// Some filesystems do not support advisory locks.
		r.log.Warnf("Proceeding without lock: %v", err)
	} else {
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.log.Debug(err)
			}
		}()
	}

	data, err := dfs.ReadFile(path)
	if err != nil {
		return dreport.FileReport{}, &FileAccessError{Path: path, Op: "read", Err: err}
	}

	target := path
	if r.job.Duplicate {
		target = DuplicatePath(path)
	}

	matches, newContent := r.content.Replace(data, r.contentTmpl)

	if err := dfs.AtomicWrite(target, newContent, dfs.FileMode(path)); err != nil {
		return dreport.FileReport{}, &FileAccessError{Path: target, Op: "write", Err: err}
	}

	r.sink.Append(fmt.Sprintf("%d matches replaced in file: %s", matches, target))
	r.log.Debugf("Wrote %d bytes to %s", len(newContent), target)

	return dreport.FileReport{
		Path:            path,
		FilenameMatches: countMatches(r.nameRe, []byte(filepath.Base(path))),
		ContentMatches:  matches,
		Target:          target,
		Digest:          dfs.Digest(newContent),
	}, nil
}

// rename applies the substitution to the original base name of path and
// moves the written target next to it under that name.
func (r *replacer) rename(path string, fr *dreport.FileReport) error {
	base := filepath.Base(path)
	newBase := r.nameRe.ReplaceAllString(base, r.nameTmpl)
	if newBase == base {
		return nil
	}

	if newBase == "" || newBase == "." || newBase == ".." || strings.ContainsRune(newBase, filepath.Separator) || strings.ContainsRune(newBase, '/') {
		return fmt.Errorf("cannot rename %s: invalid filename %q", fr.Target, newBase)
	}

	dest := filepath.Join(filepath.Dir(fr.Target), newBase)
	if dest == fr.Target {
		return nil
	}

	if err := dfs.RenameNoReplace(fr.Target, dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &NameCollisionError{From: fr.Target, Existing: dest}
		}
		return fmt.Errorf("cannot rename %s: %w", fr.Target, err)
	}

	fr.FinalPath = dest
	r.sink.Append(fmt.Sprintf("Renamed: %s -> %s", fr.Target, dest))
	return nil
}

// abort logs which files were already modified before a job stopped.
func (r *replacer) abort(report *dreport.Report, cause error) {
	report.Finish()
	modified := report.Modified()
	r.log.Errorf("Replace aborted after %d files: %v", len(modified), cause)
	r.sink.Append(fmt.Sprintf("Aborted: %v", cause))
	if len(modified) == 0 {
		r.sink.Append("No files were modified.")
		return
	}
	r.sink.Append(fmt.Sprintf("%d files were already modified:", len(modified)))
	for _, m := range modified {
		r.sink.Append("  " + m)
		r.log.Errorf("Already modified: %s", m)
	}
}
