package tablesort

import "strings"

// DefaultCommentMarker is the TOML comment marker.
const DefaultCommentMarker = "#"

// Options configures one sort call.
type Options struct {
	// CommentMarker starts a comment line. Defaults to "#".
	CommentMarker string
	// Compare orders keys. Defaults to Lexical.
	Compare Comparator
}

func (o Options) withDefaults() Options {
	if o.CommentMarker == "" {
		o.CommentMarker = DefaultCommentMarker
	}
	if o.Compare == nil {
		o.Compare = Lexical
	}
	return o
}

// Parse classifies and segments the lines of one table body.
func Parse(lines []string, opts Options) *Body {
	return Build(Classify(lines, opts))
}

// SortLines sorts the lines of one table body. The result always holds the
// same lines as the input.
func SortLines(lines []string, opts Options) []string {
	opts = opts.withDefaults()
	return Sort(Parse(lines, opts), opts.Compare).Lines()
}

// SortBody sorts the text of one table body, keeping its line endings and
// its final newline (or lack of one) as they were.
func SortBody(text string, opts Options) string {
	if text == "" {
		return text
	}
	lines, end := SplitLines(text)
	return JoinLines(SortLines(lines, opts), end)
}

// IsSortedBody reports whether sorting text would leave it unchanged.
func IsSortedBody(text string, opts Options) bool {
	opts = opts.withDefaults()
	lines, _ := SplitLines(text)
	for _, seg := range Parse(lines, opts).Segments() {
		if !seg.IsSorted(opts.Compare) {
			return false
		}
	}
	return true
}

// Ending is how a text terminates its lines.
type Ending struct {
	// Newline is "\r\n" when every line break in the text is CRLF, else "\n".
	Newline string
	// Trailing reports whether the text ended with a line break.
	Trailing bool
}

// SplitLines splits text into lines. A text whose breaks are all CRLF is
// split on "\r\n", so no line carries the carriage return; otherwise it is
// split on '\n' and a stray '\r' stays part of its line.
func SplitLines(text string) ([]string, Ending) {
	end := Ending{Newline: "\n"}
	if n := strings.Count(text, "\n"); n > 0 && strings.Count(text, "\r\n") == n {
		end.Newline = "\r\n"
	}
	end.Trailing = strings.HasSuffix(text, end.Newline)
	return strings.Split(strings.TrimSuffix(text, end.Newline), end.Newline), end
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string, end Ending) string {
	newline := end.Newline
	if newline == "" {
		newline = "\n"
	}
	out := strings.Join(lines, newline)
	if end.Trailing {
		out += newline
	}
	return out
}
