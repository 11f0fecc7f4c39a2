package document

import (
	"context"

	"tomlsort/internal/tablesort"
)

// LexicalLocator finds headers with the tablesort line classifier. Lines
// inside multi-line values are never taken for headers.
type LexicalLocator struct{}

// HeaderRows implements Locator.
func (LexicalLocator) HeaderRows(_ context.Context, src []byte) ([]int, error) {
	lines, _ := tablesort.SplitLines(string(src))
	var rows []int
	for i, l := range tablesort.Classify(lines, tablesort.Options{}) {
		if l.Header {
			rows = append(rows, i)
		}
	}
	return rows, nil
}
