//go:build cgo

package document

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/toml"
)

// TreeSitterLocator finds headers with the tree-sitter TOML grammar. When
// the parse tree has errors it defers to Fallback.
type TreeSitterLocator struct {
	Fallback Locator
}

// NewLocator returns the best locator for this build.
func NewLocator() Locator {
	return &TreeSitterLocator{Fallback: LexicalLocator{}}
}

// HeaderRows implements Locator.
func (l *TreeSitterLocator) HeaderRows(ctx context.Context, src []byte) ([]int, error) {
	// Parsers are not safe for concurrent use; take a fresh one per call.
	parser := sitter.NewParser()
	parser.SetLanguage(toml.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() && l.Fallback != nil {
		return l.Fallback.HeaderRows(ctx, src)
	}

	var rows []int
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "table", "table_array_element":
			rows = append(rows, int(child.StartPoint().Row))
		}
	}
	return rows, nil
}

// IsTreeSitterAvailable reports whether tree-sitter is compiled in.
func IsTreeSitterAvailable() bool {
	return true
}
