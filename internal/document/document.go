// Package document splits a TOML document into table bodies and sorts each
// body on its own with tablesort. Tables never move relative to each other.
package document

import (
	"context"
	"slices"
	"strings"

	"tomlsort/internal/tablesort"
)

// Locator finds the zero-based rows of table header lines.
type Locator interface {
	HeaderRows(ctx context.Context, src []byte) ([]int, error)
}

// Table is one table of a document. The root table has no header.
type Table struct {
	// Name is the header text without brackets, empty for the root table.
	Name string
	// Header is the raw header line, empty for the root table.
	Header string
	// HeaderRow is the row of the header line, -1 for the root table.
	HeaderRow int
	// Body holds the lines between this header and the next one.
	Body []string
}

// Document is a TOML document cut into tables.
type Document struct {
	Tables []Table
	ending tablesort.Ending
}

// Split cuts src into tables using the header rows reported by loc.
func Split(ctx context.Context, src string, loc Locator) (*Document, error) {
	lines, ending := tablesort.SplitLines(src)

	rows, err := loc.HeaderRows(ctx, []byte(src))
	if err != nil {
		return nil, err
	}
	rows = cleanRows(rows, len(lines))

	doc := &Document{ending: ending}
	start := 0
	header := -1
	for _, row := range append(rows, len(lines)) {
		t := Table{HeaderRow: header, Body: lines[start:row]}
		if header >= 0 {
			t.Header = lines[header]
			t.Name = headerName(t.Header)
		}
		doc.Tables = append(doc.Tables, t)
		header = row
		start = row + 1
	}
	return doc, nil
}

// Sort sorts every table body and joins the document back together.
func (d *Document) Sort(opts tablesort.Options) string {
	var out []string
	for _, t := range d.Tables {
		if t.HeaderRow >= 0 {
			out = append(out, t.Header)
		}
		out = append(out, tablesort.SortLines(t.Body, opts)...)
	}
	return tablesort.JoinLines(out, d.ending)
}

// Lines returns the document unchanged.
func (d *Document) Lines() []string {
	var out []string
	for _, t := range d.Tables {
		if t.HeaderRow >= 0 {
			out = append(out, t.Header)
		}
		out = append(out, t.Body...)
	}
	return out
}

// Sort is Split followed by Document.Sort. An empty document is returned as is.
func Sort(ctx context.Context, src string, loc Locator, opts tablesort.Options) (string, error) {
	if src == "" {
		return src, nil
	}
	doc, err := Split(ctx, src, loc)
	if err != nil {
		return "", err
	}
	return doc.Sort(opts), nil
}

// cleanRows sorts rows and drops duplicates and out-of-range values.
func cleanRows(rows []int, n int) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < n {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// headerName returns the key text of a header line such as "[[bin]] # x".
func headerName(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "[")
	if i := strings.IndexByte(s, ']'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
