package tablesort

// Lines returns the raw text of the block in output order.
func (b *EntryBlock) Lines() []string {
	out := make([]string, 0, len(b.Comments)+1+len(b.Trailing))
	out = appendRaw(out, b.Comments)
	out = append(out, b.Entry.Raw)
	return appendRaw(out, b.Trailing)
}

// Lines returns the raw text of the segment in output order.
func (s *Segment) Lines() []string {
	out := appendRaw(nil, s.Leading)
	for _, b := range s.Blocks {
		out = append(out, b.Lines()...)
	}
	return out
}

// Lines returns the raw text of the body in output order.
func (b *Body) Lines() []string {
	var out []string
	for _, it := range b.Items {
		if it.IsSegment() {
			out = append(out, it.Segment.Lines()...)
			continue
		}
		out = append(out, it.Line.Raw)
	}
	return out
}

func appendRaw(dst []string, lines []Line) []string {
	for _, l := range lines {
		dst = append(dst, l.Raw)
	}
	return dst
}
