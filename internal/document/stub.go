//go:build !cgo

package document

// NewLocator returns the best locator for this build. Without cgo there is
// no tree-sitter, so headers are found lexically.
func NewLocator() Locator {
	return LexicalLocator{}
}

// IsTreeSitterAvailable reports whether tree-sitter is compiled in.
func IsTreeSitterAvailable() bool {
	return false
}
