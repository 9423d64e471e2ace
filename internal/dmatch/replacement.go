package dmatch

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// translateReplacement turns user replacement text into a regexp.Expand
// template. Group references are written \1 .. \99, \g<1> or \g<name>;
// \\ is a backslash and \n, \t, \r, \f, \v, \a, \b, \0 and three digit
// octal escapes produce control or byte values. '$' has no special meaning.
// Other escapes of ASCII letters are errors; any other escaped character is
// kept together with its backslash.
//
// In byte mode the template is built for widened content: non-ASCII text is
// spelled by its UTF-8 bytes and octal escapes yield single bytes.
func translateReplacement(repl string, re *regexp.Regexp, byteMode bool) (string, error) {
	var sb strings.Builder
	sb.Grow(len(repl) + 8)

	text := func(s string) {
		if byteMode {
			appendWideText(&sb, s)
		} else {
			sb.WriteString(s)
		}
	}
	value := func(v uint64) {
		switch {
		case v == '$':
			sb.WriteString("$$")
		case v < utf8.RuneSelf:
			sb.WriteByte(byte(v))
		case byteMode:
			sb.WriteRune(byteRune(byte(v)))
		default:
			sb.WriteRune(rune(v))
		}
	}

	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			sb.WriteString("$$")
			continue
		case c != '\\':
			if c < utf8.RuneSelf {
				sb.WriteByte(c)
				continue
			}
			_, size := utf8.DecodeRuneInString(repl[i:])
			text(repl[i : i+size])
			i += size - 1
			continue
		case i+1 == len(repl):
			return "", errors.New("bad escape (end of replacement)")
		}

		i++
		next := repl[i]
		switch {
		case next == '\\':
			sb.WriteByte('\\')

		case next == 'g':
			if i+1 >= len(repl) || repl[i+1] != '<' {
				return "", errors.New(`missing < after \g`)
			}
			end := strings.IndexByte(repl[i+2:], '>')
			if end < 0 {
				return "", errors.New("missing >, unterminated name")
			}
			ref, err := groupRef(repl[i+2:i+2+end], re)
			if err != nil {
				return "", err
			}
			sb.WriteString("${" + ref + "}")
			i += 2 + end

		case next >= '0' && next <= '9':
			j := i + 1
			for j < len(repl) && j < i+3 && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			digits := repl[i:j]
			if next == '0' || (len(digits) == 3 && isOctal(digits)) {
				// Octal escape: \0, \0N, \0NN or \NNN.
				if next == '0' {
					j = i + 1
					for j < len(repl) && j < i+3 && repl[j] >= '0' && repl[j] <= '7' {
						j++
					}
					digits = repl[i:j]
				}
				v, _ := strconv.ParseUint(digits, 8, 32)
				if v > 0xff {
					return "", fmt.Errorf(`octal escape value \%s outside of range 0-0o377`, digits)
				}
				value(v)
				i = j - 1
				continue
			}
			if len(digits) == 3 {
				digits = digits[:2]
			}
			ref, err := groupRef(digits, re)
			if err != nil {
				return "", err
			}
			sb.WriteString("${" + ref + "}")
			i += len(digits) - 1

		case strings.IndexByte("ntrfvab", next) >= 0:
			value(uint64(controlEscapes[next]))

		case next < utf8.RuneSelf && isASCIILetter(next):
			return "", fmt.Errorf(`bad escape \%c`, next)

		default:
			sb.WriteByte('\\')
			if next < utf8.RuneSelf {
				if next == '$' {
					sb.WriteByte('$')
				}
				sb.WriteByte(next)
				continue
			}
			_, size := utf8.DecodeRuneInString(repl[i:])
			text(repl[i : i+size])
			i += size - 1
		}
	}
	return sb.String(), nil
}

var controlEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 'f': '\f', 'v': '\v', 'a': '\a', 'b': '\b',
}

// groupRef checks a group number or name against re and returns it in the
// form ${...} expects.
func groupRef(ref string, re *regexp.Regexp) (string, error) {
	if ref == "" {
		return "", errors.New("missing group name")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n > re.NumSubexp() {
			return "", fmt.Errorf("invalid group reference %d", n)
		}
		return strconv.Itoa(n), nil
	}
	if !slices.Contains(re.SubexpNames()[1:], ref) {
		return "", fmt.Errorf("unknown group name '%s'", ref)
	}
	return ref, nil
}

func isOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// CheckReplacement reports whether replacement is usable with pattern,
// without touching any file.
func CheckReplacement(pattern string, caseSensitive bool, replacement string) error {
	re, err := Compile(pattern, caseSensitive)
	if err != nil {
		return err
	}
	if _, err := translateReplacement(replacement, re, false); err != nil {
		return &ReplacementError{Replacement: replacement, Err: err}
	}
	return nil
}
