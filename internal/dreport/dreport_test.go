package dreport

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := New(ModeReplace, "foo", false)
	r.Replacement = "bar"
	r.Add(FileReport{Path: "/data/a.csv", ContentMatches: 2, Target: "/data/a.csv", Digest: "d1"})
	r.Add(FileReport{
		Path:            "/data/foo.csv",
		FilenameMatches: 1,
		ContentMatches:  1,
		Target:          "/data/foo.csv",
		FinalPath:       "/data/bar.csv",
		Digest:          "d2",
	})
	r.Add(FileReport{
		Path:            "/data/FOO.csv",
		FilenameMatches: 1,
		Target:          "/data/FOO.csv",
		RenameError:     "name collision",
	})
	r.AddCollision(Collision{From: "/data/FOO.csv", Existing: "/data/bar.csv"})
	r.Finish()
	return r
}

func TestReportTotals(t *testing.T) {
	r := sampleReport()

	assert.NotEmpty(t, r.JobID)
	assert.Equal(t, 3, r.FileCount)
	assert.Equal(t, 3, r.TotalMatches)
	assert.Equal(t, 2, r.FilenameMatches)
	assert.Len(t, r.Collisions, 1)
	assert.Equal(t, `Found "foo" 3 times in 3 files.`, r.Summary())
	assert.GreaterOrEqual(t, r.Duration().Nanoseconds(), int64(0))
	assert.Equal(t, []string{"/data/a.csv", "/data/bar.csv", "/data/FOO.csv"}, r.Modified())
}

func TestSearchReportHasNoModified(t *testing.T) {
	r := New(ModeSearch, "x", true)
	r.Add(FileReport{Path: "/data/a.csv", ContentMatches: 1})

	assert.Empty(t, r.Modified())
	assert.Zero(t, r.Duration())
}

func TestWriteJSON(t *testing.T) {
	r := sampleReport()
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, r.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.JobID, decoded.JobID)
	assert.Equal(t, ModeReplace, decoded.Mode)
	assert.Equal(t, 3, decoded.TotalMatches)
	require.Len(t, decoded.Files, 3)
	assert.Equal(t, "/data/bar.csv", decoded.Files[1].FinalPath)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestWriteCSV(t *testing.T) {
	r := sampleReport()
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, r.WriteCSV(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"/data/a.csv", "0", "2", "/data/a.csv", "", "d1", ""}, rows[1])
	assert.Equal(t, "name collision", rows[3][6])
}

func TestExportRejectsBadPaths(t *testing.T) {
	r := sampleReport()

	assert.Error(t, r.WriteJSON(""))
	assert.Error(t, r.WriteCSV(t.TempDir()))
	assert.Error(t, r.WriteJSON(filepath.Join(t.TempDir(), "missing", "r.json")))
}
