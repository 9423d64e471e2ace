// Package dreport holds the match report produced by search and replace
// jobs: per file match counts plus job wide totals.
package dreport

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mode names the kind of job a report describes.
type Mode string

const (
	ModeSearch  Mode = "search"
	ModeReplace Mode = "replace"
)

// FileReport is the per file record. Counts always describe the original
// filename and content, before any replacement.
type FileReport struct {
	Path            string `json:"path"`
	FilenameMatches int    `json:"filename_matches"`
	ContentMatches  int    `json:"content_matches"`

	// Replace jobs only.
	Target      string `json:"target,omitempty"`
	FinalPath   string `json:"final_path,omitempty"`
	Digest      string `json:"digest,omitempty"`
	RenameError string `json:"rename_error,omitempty"`
}

// Collision records a rename of From that was refused because Existing
// was already taken.
type Collision struct {
	From     string `json:"from"`
	Existing string `json:"existing"`
}

// Report aggregates FileReports for one job.
type Report struct {
	JobID         string       `json:"job_id"`
	Mode          Mode         `json:"mode"`
	Pattern       string       `json:"pattern"`
	Replacement   string       `json:"replacement,omitempty"`
	CaseSensitive bool         `json:"case_sensitive"`
	Files         []FileReport `json:"files"`
	Collisions    []Collision  `json:"collisions,omitempty"`

	// TotalMatches sums content matches, FilenameMatches sums filename
	// matches. FileCount is the number of files processed.
	TotalMatches    int `json:"total_matches"`
	FilenameMatches int `json:"filename_matches"`
	FileCount       int `json:"file_count"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// New returns an empty report with a fresh job id.
func New(mode Mode, pattern string, caseSensitive bool) *Report {
	return &Report{
		JobID:         uuid.NewString(),
		Mode:          mode,
		Pattern:       pattern,
		CaseSensitive: caseSensitive,
		Files:         make([]FileReport, 0),
		StartedAt:     time.Now(),
	}
}

// Add appends fr and updates the totals.
func (r *Report) Add(fr FileReport) {
	r.Files = append(r.Files, fr)
	r.TotalMatches += fr.ContentMatches
	r.FilenameMatches += fr.FilenameMatches
	r.FileCount++
}

// AddCollision records a refused rename.
func (r *Report) AddCollision(c Collision) {
	r.Collisions = append(r.Collisions, c)
}

// Finish stamps the completion time.
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}

// Modified lists the files a replace job wrote, in processing order.
func (r *Report) Modified() []string {
	out := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Target == "" {
			continue
		}
		if f.FinalPath != "" {
			out = append(out, f.FinalPath)
		} else {
			out = append(out, f.Target)
		}
	}
	return out
}

// Summary is the one line job summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("Found %q %d times in %d files.", r.Pattern, r.TotalMatches, r.FileCount)
}

// Duration of the job, zero until Finish is called.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
