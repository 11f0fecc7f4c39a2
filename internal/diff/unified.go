package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of context lines around a change.
const DefaultContext = 3

// Lines returns the line operations that turn oldText into newText.
func Lines(oldText, newText string) []LineOp {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	// Line-level reduction keeps every op on whole lines.
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var ops []LineOp
	for _, d := range diffs {
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			ops = append(ops, LineOp{Op: op, Text: line})
		}
	}
	return ops
}

// Count returns added and removed line counts for ops.
func Count(ops []LineOp) Stats {
	var s Stats
	for _, op := range ops {
		switch op.Op {
		case OpInsert:
			s.Added++
		case OpDelete:
			s.Removed++
		}
	}
	return s
}

// Hunks groups ops into hunks with context lines on each side. Changes
// closer than twice the context share a hunk.
func Hunks(ops []LineOp, context int) []Hunk {
	oldPos := make([]int, len(ops)+1)
	newPos := make([]int, len(ops)+1)
	for i, op := range ops {
		oldPos[i+1] = oldPos[i]
		newPos[i+1] = newPos[i]
		if op.Op != OpInsert {
			oldPos[i+1]++
		}
		if op.Op != OpDelete {
			newPos[i+1]++
		}
	}

	var hunks []Hunk
	i := 0
	for i < len(ops) {
		if ops[i].Op == OpEqual {
			i++
			continue
		}

		start := max(0, i-context)
		j := i
		for {
			for j < len(ops) && ops[j].Op != OpEqual {
				j++
			}
			k := j
			for k < len(ops) && ops[k].Op == OpEqual {
				k++
			}
			if k < len(ops) && k-j <= 2*context {
				j = k
				continue
			}
			break
		}
		end := min(len(ops), j+context)

		h := Hunk{
			OldStart: oldPos[start] + 1,
			OldCount: oldPos[end] - oldPos[start],
			NewStart: newPos[start] + 1,
			NewCount: newPos[end] - newPos[start],
			Lines:    ops[start:end],
		}
		if h.OldCount == 0 {
			h.OldStart--
		}
		if h.NewCount == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		i = end
	}
	return hunks
}

// Unified renders a unified diff of oldText and newText. It returns "" when
// the inputs are equal.
func Unified(oldName, newName, oldText, newText string, context int) string {
	if oldText == newText {
		return ""
	}
	hunks := Hunks(Lines(oldText, newText), context)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldName, newName)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			b.WriteString(l.Op.String())
			b.WriteString(strings.TrimSuffix(l.Text, "\n"))
			b.WriteByte('\n')
			if !strings.HasSuffix(l.Text, "\n") {
				b.WriteString("\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}
