package tablesort

import (
	"strings"

	"github.com/BurntSushi/toml"
)

// Key is the declared key of an entry.
type Key struct {
	// Raw is the key exactly as written, without surrounding whitespace.
	Raw string
	// Parts holds the decoded dotted components. `"a.b"` is one part,
	// a.b is two.
	Parts []string
}

// String returns the decoded parts joined with dots.
func (k Key) String() string {
	return strings.Join(k.Parts, ".")
}

// ParseKey reads a dotted key from the start of s. It returns the key and
// the text following it. Leading whitespace must already be stripped.
func ParseKey(s string) (Key, string, bool) {
	var parts []string
	i := 0
	for {
		i = skipSpace(s, i)
		if i >= len(s) {
			return Key{}, "", false
		}

		var part string
		var end int
		switch s[i] {
		case '"':
			end = skipString(s[i:], '"', true) + i
			if end-i < 2 || s[end-1] != '"' {
				return Key{}, "", false
			}
			decoded, ok := decodeBasic(s[i:end])
			if !ok {
				return Key{}, "", false
			}
			part = decoded
		case '\'':
			closing := strings.IndexByte(s[i+1:], '\'')
			if closing < 0 {
				return Key{}, "", false
			}
			end = i + 1 + closing + 1
			part = s[i+1 : end-1]
		default:
			end = i
			for end < len(s) && isBareKeyChar(s[end]) {
				end++
			}
			if end == i {
				return Key{}, "", false
			}
			part = s[i:end]
		}
		parts = append(parts, part)

		i = skipSpace(s, end)
		if i < len(s) && s[i] == '.' {
			i++
			continue
		}
		return Key{Raw: strings.TrimRight(s[:i], " \t"), Parts: parts}, s[i:], true
	}
}

// decodeBasic decodes a basic (double-quoted) string including escapes.
func decodeBasic(quoted string) (string, bool) {
	if !strings.ContainsRune(quoted, '\\') {
		return quoted[1 : len(quoted)-1], true
	}
	var v struct {
		K string `toml:"k"`
	}
	if _, err := toml.Decode("k = "+quoted, &v); err != nil {
		return "", false
	}
	return v.K, true
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
