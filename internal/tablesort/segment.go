package tablesort

// EntryBlock is one entry plus everything that travels with it.
type EntryBlock struct {
	// Comments are the comment lines directly above the entry.
	Comments []Line
	Entry    Line
	// Trailing holds continuation and unrecognized lines after the entry.
	Trailing []Line
}

// Key returns the key of the block's entry.
func (b *EntryBlock) Key() Key {
	return b.Entry.Key
}

// Segment is a sortable run of entry blocks. Leading comments stay on top.
type Segment struct {
	Leading []Line
	Blocks  []*EntryBlock
}

// Item is either a segment or a passthrough line.
type Item struct {
	Segment *Segment
	Line    Line
}

// IsSegment reports whether the item holds a segment.
func (it Item) IsSegment() bool {
	return it.Segment != nil
}

// Body is a table body as segments and passthrough lines in input order.
type Body struct {
	Items []Item
}

// Segments returns the body's segments in order.
func (b *Body) Segments() []*Segment {
	var segs []*Segment
	for _, it := range b.Items {
		if it.IsSegment() {
			segs = append(segs, it.Segment)
		}
	}
	return segs
}

// Build folds classified lines into a Body. It accepts any sequence.
func Build(lines []Line) *Body {
	b := &builder{body: &Body{}}
	for _, l := range lines {
		b.add(l)
	}
	b.flushPending()
	return b.body
}

type builder struct {
	body    *Body
	open    *Segment
	pending []Line
}

func (b *builder) add(l Line) {
	switch {
	case l.Kind == Blank:
		b.flushPending()
		b.open = nil
		b.pass(l)

	case l.Kind == Comment:
		b.pending = append(b.pending, l)

	case l.Kind == Entry:
		block := &EntryBlock{Entry: l}
		if b.open == nil {
			b.open = &Segment{Leading: b.pending}
			b.body.Items = append(b.body.Items, Item{Segment: b.open})
		} else {
			block.Comments = b.pending
		}
		b.pending = nil
		b.open.Blocks = append(b.open.Blocks, block)

	case l.Stray:
		b.flushPending()
		b.open = nil
		b.pass(l)

	case b.open != nil:
		last := b.open.Blocks[len(b.open.Blocks)-1]
		last.Trailing = append(last.Trailing, b.pending...)
		last.Trailing = append(last.Trailing, l)
		b.pending = nil

	default:
		b.flushPending()
		b.pass(l)
	}
}

// flushPending emits a comment run that no entry claimed.
func (b *builder) flushPending() {
	for _, c := range b.pending {
		b.pass(c)
	}
	b.pending = nil
}

func (b *builder) pass(l Line) {
	b.body.Items = append(b.body.Items, Item{Line: l})
}
