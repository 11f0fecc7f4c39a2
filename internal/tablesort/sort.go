package tablesort

import "slices"

// SortSegment returns a copy of seg with its blocks stably sorted.
// The blocks themselves are shared, not copied.
func SortSegment(seg *Segment, compare Comparator) *Segment {
	blocks := slices.Clone(seg.Blocks)
	slices.SortStableFunc(blocks, func(a, b *EntryBlock) int {
		return compare(a.Key(), b.Key())
	})
	return &Segment{Leading: seg.Leading, Blocks: blocks}
}

// IsSorted reports whether the segment's blocks are already in order.
func (s *Segment) IsSorted(compare Comparator) bool {
	return slices.IsSortedFunc(s.Blocks, func(a, b *EntryBlock) int {
		return compare(a.Key(), b.Key())
	})
}

// Sort returns a new body with every segment sorted. Passthrough lines and
// segment positions are unchanged.
func Sort(body *Body, compare Comparator) *Body {
	out := &Body{Items: make([]Item, len(body.Items))}
	for i, it := range body.Items {
		if it.IsSegment() {
			it.Segment = SortSegment(it.Segment, compare)
		}
		out.Items[i] = it
	}
	return out
}
