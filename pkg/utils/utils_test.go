package utils

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

// Test the DisplaySize function
func TestDisplaySize(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{1, "1 B"},
		{1024, "1.00 KiB"},
		{1024 * 1024, "1.00 MiB"},
		{1024 * 1024 * 1024, "1.00 GiB"},
		{1024 * 1024 * 1024 * 1024, "1.00 TiB"},
		{1024 * 1024 * 1024 * 1024 * 1024, "1.00 PiB"},
		{1024 * 1024 * 1024 * 1024 * 1024 * 1024, "1.00 EiB"},
		{234, "234 B"},
		{200034, "195.35 KiB"},
	}

	for _, test := range tests {
		got := DisplaySize(test.bytes)
		if got != test.want {
			t.Errorf("DisplaySize(%d) = %q; want %q", test.bytes, got, test.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{"0", 0},
		{"1024", 1024},
		{"1K", KiB},
		{"1KB", KiB},
		{"1KiB", KiB},
		{"1.5G", GiB + GiB/2},
		{"2Gi", 2 * GiB},
		{"750MiB", 750 * MiB},
		{"10M", 10 * MiB},
		{"1e3", 1000},
		{"512b", 512},
		{"12 bytes", 12},
		{"2 GiB", 2 * GiB},
	}

	for _, tc := range tests {
		got, err := ParseSize(tc.input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseSize(%q) = %d; want %d", tc.input, got, tc.want)
		}
	}

	invalid := []string{"", "abc", "-1", "1XB", "lots", "."}
	for _, input := range invalid {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) expected error, got nil", input)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"/data/a.csv", 40, "/data/a.csv"},
		{"/data/a.csv", 0, "/data/a.csv"},
		{"/very/long/directory/a.csv", 12, "...ory/a.csv"},
		{"/data/日本語.csv", 10, "...語.csv"},
		{"/data/a.csv", 2, "/d"},
	}

	for _, tc := range tests {
		got := TruncatePath(tc.in, tc.width)
		if got != tc.want {
			t.Errorf("TruncatePath(%q, %d) = %q; want %q", tc.in, tc.width, got, tc.want)
		}
		if tc.width > 0 && runewidth.StringWidth(got) > tc.width {
			t.Errorf("TruncatePath(%q, %d) = %q is wider than %d cells", tc.in, tc.width, got, tc.width)
		}
	}
}
