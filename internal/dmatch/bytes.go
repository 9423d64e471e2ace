package dmatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// File content is matched byte by byte. Go's regexp works on UTF-8 runes,
// so content is widened first: ASCII stays as is and every byte 0x80-0xFF
// becomes the private use rune byteBase+b. The pattern gets the same
// treatment (non-ASCII literals by their UTF-8 bytes, \xHH and octal escapes
// by value), and the result is narrowed back to bytes after substitution.
//
// Private use runes have no case folding partners, so (?i) folds ASCII
// letters only. The extra partners of k and s (U+212A, U+017F) never occur
// in widened content.
const byteBase = 0xE000

func byteRune(b byte) rune { return byteBase + rune(b) }

func hasHighBytes(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// widen maps raw bytes into the matching domain. Pure ASCII input is
// returned without copying.
func widen(b []byte) []byte {
	if !hasHighBytes(b) {
		return b
	}
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		if c < utf8.RuneSelf {
			out = append(out, c)
			continue
		}
		out = utf8.AppendRune(out, byteRune(c))
	}
	return out
}

// narrow reverses widen.
func narrow(b []byte) []byte {
	if !hasHighBytes(b) {
		return b
	}
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		if b[0] < utf8.RuneSelf {
			out = append(out, b[0])
			b = b[1:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		if r >= byteRune(0x80) && r <= byteRune(0xff) {
			out = append(out, byte(r-byteBase))
		} else {
			out = append(out, b[:size]...)
		}
		b = b[size:]
	}
	return out
}

// appendWideText appends s with every non-ASCII rune spelled as the
// widened runes of its UTF-8 bytes.
func appendWideText(sb *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] < utf8.RuneSelf {
			sb.WriteByte(s[i])
			continue
		}
		sb.WriteRune(byteRune(s[i]))
	}
}

func writeByteEscape(sb *strings.Builder, v int) {
	fmt.Fprintf(sb, `\x{%X}`, byteRune(byte(v)))
}

// widenPattern rewrites a pattern so it matches widened content. Escapes
// the rewrite does not understand are copied unchanged and left for
// regexp.Compile to judge.
func widenPattern(pattern string) string {
	var sb strings.Builder
	sb.Grow(len(pattern) + 16)

	for i := 0; i < len(pattern); {
		c := pattern[i]
		if c >= utf8.RuneSelf {
			_, size := utf8.DecodeRuneInString(pattern[i:])
			appendWideText(&sb, pattern[i:i+size])
			i += size
			continue
		}
		if c != '\\' || i+1 == len(pattern) {
			sb.WriteByte(c)
			i++
			continue
		}

		next := pattern[i+1]
		switch {
		case next == 'x':
			i += widenHexEscape(&sb, pattern[i:])
		case next >= '0' && next <= '7':
			i += widenOctalEscape(&sb, pattern[i:])
		case next == 'Q':
			// \Q...\E is literal text; escapes are not interpreted inside.
			end := strings.Index(pattern[i+2:], `\E`)
			if end < 0 {
				end = len(pattern) - i - 2
			} else {
				end += 2
			}
			sb.WriteString(`\Q`)
			appendWideText(&sb, pattern[i+2:i+2+end])
			i += 2 + end
		case next >= utf8.RuneSelf:
			// An escaped non-ASCII rune stands for itself.
			_, size := utf8.DecodeRuneInString(pattern[i+1:])
			appendWideText(&sb, pattern[i+1:i+1+size])
			i += 1 + size
		default:
			sb.WriteByte(c)
			sb.WriteByte(next)
			i += 2
		}
	}
	return sb.String()
}

// widenHexEscape handles \xHH and \x{H...} at the start of s and returns
// how many bytes it consumed.
func widenHexEscape(sb *strings.Builder, s string) int {
	var digits string
	var n int
	switch {
	case len(s) > 2 && s[2] == '{':
		end := strings.IndexByte(s, '}')
		if end < 0 {
			sb.WriteString(s[:2])
			return 2
		}
		digits, n = s[3:end], end+1
	case len(s) >= 4:
		digits, n = s[2:4], 4
	default:
		sb.WriteString(s[:2])
		return 2
	}

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || v < 0x80 || v > 0xff {
		sb.WriteString(s[:n])
		return n
	}
	writeByteEscape(sb, int(v))
	return n
}

// widenOctalEscape handles \0, \0NN and \NNN at the start of s. A single
// non-zero digit is a backreference, which regexp rejects on its own.
func widenOctalEscape(sb *strings.Builder, s string) int {
	n := 2
	for n < len(s) && n < 4 && s[n] >= '0' && s[n] <= '7' {
		n++
	}
	if s[1] != '0' && n == 2 {
		sb.WriteString(s[:n])
		return n
	}

	v, _ := strconv.ParseUint(s[1:n], 8, 32)
	if v < 0x80 || v > 0xff {
		sb.WriteString(s[:n])
		return n
	}
	writeByteEscape(sb, int(v))
	return n
}

// contentMatcher applies a pattern to raw file bytes.
type contentMatcher struct {
	re *regexp.Regexp
}

func compileContent(pattern string, caseSensitive bool) (*contentMatcher, error) {
	re, err := compileExpr(widenPattern(pattern), pattern, caseSensitive)
	if err != nil {
		return nil, err
	}
	return &contentMatcher{re: re}, nil
}

// Count returns the number of non-overlapping matches in content.
func (m *contentMatcher) Count(content []byte) int {
	return countMatches(m.re, widen(content))
}

// Replace substitutes every match in one pass. template must come from
// translateReplacement in byte mode.
func (m *contentMatcher) Replace(content []byte, template string) (int, []byte) {
	wide := widen(content)
	matches := countMatches(m.re, wide)
	if matches == 0 {
		return 0, content
	}
	return matches, narrow(m.re.ReplaceAll(wide, []byte(template)))
}
