package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Our size constants. Powers of two!
const (
	_   = iota
	KiB = 1 << (10 * iota)
	MiB
	GiB
	TiB
	PiB
	EiB
)

var sizeUnits = []struct {
	prefix string
	mult   uint64
}{
	{"e", EiB},
	{"p", PiB},
	{"t", TiB},
	{"g", GiB},
	{"m", MiB},
	{"k", KiB},
}

// ParseSize converts human-readable size strings (e.g. "10M", "4GiB", "1.5T")
// to bytes. Suffixes are binary multiples; "b", "byte" and "bytes" mean 1.
func ParseSize(input string) (uint64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.NewReplacer(" ", "", "_", "", ",", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("size string is empty")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("size must be non-negative: %s", input)
	}

	// Plain numbers, including exponent notation such as 1e3.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return toBytes(f, 1, input)
	}

	idx := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if idx <= 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	value, err := strconv.ParseFloat(s[:idx], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", input, err)
	}

	mult, err := unitMultiplier(s[idx:])
	if err != nil {
		return 0, err
	}
	return toBytes(value, mult, input)
}

func unitMultiplier(suffix string) (uint64, error) {
	switch suffix {
	case "b", "byte", "bytes":
		return 1, nil
	}
	unit := strings.TrimSuffix(strings.TrimSuffix(suffix, "b"), "i")
	for _, u := range sizeUnits {
		if unit == u.prefix {
			return u.mult, nil
		}
	}
	return 0, fmt.Errorf("unknown size suffix %q", suffix)
}

func toBytes(value float64, mult uint64, input string) (uint64, error) {
	product := value * float64(mult)
	if math.IsInf(product, 0) || math.IsNaN(product) {
		return 0, fmt.Errorf("size %s is not a finite number", input)
	}
	if product < 0 || product > float64(math.MaxUint64) {
		return 0, fmt.Errorf("size %s overflows uint64", input)
	}
	return uint64(product), nil
}

// DisplaySize takes a number of bytes and returns a human-readable string
func DisplaySize(bytes uint64) string {
	if bytes < KiB {
		return fmt.Sprintf("%d B", bytes)
	}
	for i := len(sizeUnits) - 1; i >= 0; i-- {
		u := sizeUnits[i]
		if i == 0 || bytes < u.mult*KiB {
			return fmt.Sprintf("%.2f %siB", float64(bytes)/float64(u.mult), strings.ToUpper(u.prefix))
		}
	}
	return fmt.Sprintf("%d B", bytes)
}

// TruncatePath shortens s to at most width terminal cells, keeping the tail
// where the file name lives. Wide runes count as two cells.
func TruncatePath(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	if width <= len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}

	runes := []rune(s)
	keep := width - len(ellipsis)
	cells := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if cells+w > keep {
			break
		}
		cells += w
		start--
	}
	return ellipsis + string(runes[start:])
}
