package tablesort

import "strings"

// Kind classifies one physical line of a table body.
type Kind int

const (
	// Blank is a line holding only whitespace.
	Blank Kind = iota
	// Comment is a line whose first non-space text is the comment marker.
	Comment
	// Entry is a key = value line.
	Entry
	// Other is anything else: value continuations, headers, unknown syntax.
	Other
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case Entry:
		return "entry"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// Line is one classified physical line. Raw is never modified.
type Line struct {
	Raw  string
	Kind Kind

	// Key and Rest are set for entries. Rest is everything after '=',
	// trailing comment included, verbatim.
	Key  Key
	Rest string

	// Header marks a table header line such as [server] or [[bin]].
	Header bool
	// Stray marks Other lines that must stay where they are: headers and
	// lines of a value that never closes.
	Stray bool
}

// Classify classifies every line in order. It never fails; input it cannot
// make sense of comes back as Other.
func Classify(raw []string, opts Options) []Line {
	opts = opts.withDefaults()
	marker := opts.CommentMarker

	out := make([]Line, len(raw))
	var state valueState
	opener := -1

	for i, text := range raw {
		line := Line{Raw: text}

		if state.open() {
			line.Kind = Other
			state.scan(text, marker)
			if !state.open() {
				opener = -1
			}
			out[i] = line
			continue
		}

		trimmed := strings.TrimSpace(text)
		switch {
		case trimmed == "":
			line.Kind = Blank
		case strings.HasPrefix(trimmed, marker):
			line.Kind = Comment
		case strings.HasPrefix(trimmed, "["):
			line.Kind = Other
			line.Header = true
			line.Stray = true
		default:
			key, rest, ok := parseEntry(strings.TrimLeft(text, " \t"))
			if !ok {
				line.Kind = Other
				break
			}
			line.Kind = Entry
			line.Key = key
			line.Rest = rest
			state.scan(rest, marker)
			if state.open() {
				opener = i
			}
		}
		out[i] = line
	}

	// A value still open at the end is malformed. Everything from its entry
	// on stays in place.
	if state.open() && opener >= 0 {
		for i := opener; i < len(out); i++ {
			out[i].Kind = Other
			out[i].Key = Key{}
			out[i].Rest = ""
			out[i].Stray = true
		}
	}

	return out
}

// parseEntry splits "key = rest".
func parseEntry(text string) (Key, string, bool) {
	key, after, ok := ParseKey(text)
	if !ok {
		return Key{}, "", false
	}
	after = strings.TrimLeft(after, " \t")
	if !strings.HasPrefix(after, "=") {
		return Key{}, "", false
	}
	return key, after[1:], true
}
