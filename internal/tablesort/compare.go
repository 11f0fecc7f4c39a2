package tablesort

import (
	"cmp"
	"strings"
)

// Comparator orders two keys: negative when a sorts first, zero on a tie.
// Ties keep input order whatever comparator is used.
type Comparator func(a, b Key) int

// Lexical compares keys part by part, byte-wise and case-sensitive. A key
// that is a dotted prefix of another sorts first. Parts are compared whole,
// so a.b sorts before a-b even though '-' is below '.' in a byte comparison
// of the joined text: the dotted key's first part "a" is a prefix of "a-b".
func Lexical(a, b Key) int {
	for i := 0; i < len(a.Parts) && i < len(b.Parts); i++ {
		if c := strings.Compare(a.Parts[i], b.Parts[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.Parts), len(b.Parts))
}

// CaseInsensitive compares keys with case folded, then lexically.
func CaseInsensitive(a, b Key) int {
	for i := 0; i < len(a.Parts) && i < len(b.Parts); i++ {
		if c := strings.Compare(strings.ToLower(a.Parts[i]), strings.ToLower(b.Parts[i])); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(len(a.Parts), len(b.Parts)); c != 0 {
		return c
	}
	return Lexical(a, b)
}

// Priority puts the listed keys first, in list order, and orders the rest
// with fallback. Keys are matched on their dotted decoded form.
func Priority(keys []string, fallback Comparator) Comparator {
	if fallback == nil {
		fallback = Lexical
	}
	if len(keys) == 0 {
		return fallback
	}

	rank := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}

	return func(a, b Key) int {
		ra, okA := rank[a.String()]
		rb, okB := rank[b.String()]
		switch {
		case okA && okB:
			return cmp.Compare(ra, rb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return fallback(a, b)
		}
	}
}
