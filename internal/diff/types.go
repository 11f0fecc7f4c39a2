// Package diff renders line diffs between an original and a sorted document.
package diff

// Op is the kind of a diff line.
type Op int

const (
	// OpEqual is a line present in both versions.
	OpEqual Op = iota
	// OpDelete is a line only in the old version.
	OpDelete
	// OpInsert is a line only in the new version.
	OpInsert
)

// String returns the unified diff prefix of the op.
func (o Op) String() string {
	switch o {
	case OpDelete:
		return "-"
	case OpInsert:
		return "+"
	default:
		return " "
	}
}

// LineOp is one line of a diff. Text keeps its trailing newline, if any.
type LineOp struct {
	Op   Op
	Text string
}

// Hunk is a run of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []LineOp
}

// Stats counts changed lines.
type Stats struct {
	Added   int `json:"added" yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
}
