package dmatch

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDuplicatePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.csv", "report_REPLACED.csv"},
		{"archive.tar.gz", "archive.tar_REPLACED.gz"},
		{"README", "README_REPLACED"},
		{".bashrc", "_REPLACED.bashrc"},
		{"trailing.", "trailing_REPLACED."},
		{filepath.Join("dir.d", "noext"), filepath.Join("dir.d", "noext_REPLACED")},
		{filepath.Join("data", "v1.2", "a.csv"), filepath.Join("data", "v1.2", "a_REPLACED.csv")},
	}

	for _, tc := range tests {
		if got := DuplicatePath(tc.in); got != tc.want {
			t.Errorf("DuplicatePath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func FuzzDuplicatePath(f *testing.F) {
	f.Add("report.csv")
	f.Add("README")
	f.Add("a.b.c")
	f.Add("dir.x/file")
	f.Add("")

	f.Fuzz(func(t *testing.T, path string) {
		got := DuplicatePath(path)

		if len(got) != len(path)+len(DuplicateMarker) {
			t.Fatalf("DuplicatePath(%q) = %q: unexpected length", path, got)
		}
		if strings.Replace(got, DuplicateMarker, "", 1) != path && !strings.Contains(path, DuplicateMarker) {
			t.Errorf("DuplicatePath(%q) = %q: removing the marker does not restore the input", path, got)
		}

		dir, _ := filepath.Split(path)
		if !strings.HasPrefix(got, dir) {
			t.Errorf("DuplicatePath(%q) = %q: directory changed", path, got)
		}
	})
}

func TestCompile(t *testing.T) {
	re, err := Compile("abc", false)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if !re.MatchString("xABCx") {
		t.Errorf("case-insensitive pattern should match upper case input")
	}

	re, err = Compile("abc", true)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if re.MatchString("xABCx") {
		t.Errorf("case-sensitive pattern should not match upper case input")
	}

	if _, err := Compile("[", true); err == nil {
		t.Errorf("Compile should reject an invalid pattern")
	}
}
