package dreport

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const reportFileMode = 0o600

var csvHeader = []string{
	"path", "filename_matches", "content_matches",
	"target", "final_path", "digest", "rename_error",
}

// WriteJSON writes the full report, totals included, to path.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	file, err := exportFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write JSON file %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes one row per processed file to path.
func (r *Report) WriteCSV(path string) error {
	file, err := exportFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, f := range r.Files {
		row := []string{
			f.Path,
			strconv.Itoa(f.FilenameMatches),
			strconv.Itoa(f.ContentMatches),
			f.Target,
			f.FinalPath,
			f.Digest,
			f.RenameError,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV writer: %w", err)
	}
	return nil
}

// exportFile validates path and opens it for writing, truncating any
// previous report.
func exportFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("report path is empty")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolve report path %s: %w", path, err)
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("report path %s is a directory", abs)
	}

	name := filepath.Base(abs)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid report filename %q", name)
	}

	return createInDir(filepath.Dir(abs), name, abs)
}
