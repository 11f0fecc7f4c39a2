package tablesort

import "strings"

// valueState tracks value syntax that can continue onto following lines.
type valueState struct {
	depth     int    // unclosed '[' and '{'
	multiline string // open `"""` or `'''` delimiter
}

func (s *valueState) open() bool {
	return s.depth > 0 || s.multiline != ""
}

// scan advances the state over one physical line of value text.
func (s *valueState) scan(text, marker string) {
	i := 0
	for i < len(text) {
		if s.multiline != "" {
			end := closeMultiline(text[i:], s.multiline)
			if end < 0 {
				return
			}
			i += end
			s.multiline = ""
			continue
		}

		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, marker):
			return
		case strings.HasPrefix(rest, `"""`), strings.HasPrefix(rest, `'''`):
			s.multiline = rest[:3]
			i += 3
		case rest[0] == '"':
			i += skipString(rest, '"', true)
		case rest[0] == '\'':
			i += skipString(rest, '\'', false)
		case rest[0] == '[' || rest[0] == '{':
			s.depth++
			i++
		case rest[0] == ']' || rest[0] == '}':
			if s.depth > 0 {
				s.depth--
			}
			i++
		default:
			i++
		}
	}
}

// closeMultiline returns the offset just past the closing delimiter in text,
// or -1 when the string stays open. Up to two extra quotes directly before
// the delimiter's end belong to the string content.
func closeMultiline(text, delim string) int {
	escapes := delim[0] == '"'
	for j := 0; j < len(text); j++ {
		if escapes && text[j] == '\\' {
			j++
			continue
		}
		if strings.HasPrefix(text[j:], delim) {
			end := j + len(delim)
			for extra := 0; extra < 2 && end < len(text) && text[end] == delim[0]; extra++ {
				end++
			}
			return end
		}
	}
	return -1
}

// skipString returns the length of the single-line string opening text.
// An unterminated string runs to the end of the line.
func skipString(text string, quote byte, escapes bool) int {
	for j := 1; j < len(text); j++ {
		if escapes && text[j] == '\\' {
			j++
			continue
		}
		if text[j] == quote {
			return j + 1
		}
	}
	return len(text)
}
