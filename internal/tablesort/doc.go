// Package tablesort sorts the entries of one TOML table body by key while
// keeping the author's grouping intact.
//
// A body is read line by line and folded into segments. A segment is a run
// of entries that is not interrupted by a blank line; it may open with a
// block of comments that stays at the top whatever entry ends up first.
// Entries are sorted inside their segment only, so blank-line separated
// clusters never mix.
//
// # Units of movement
//
// The unit that moves is an EntryBlock:
//
//   - comments directly above the entry (when the entry is not the first of
//     its segment)
//   - the entry line itself, including any trailing comment
//   - continuation lines of a multi-line value and unrecognized lines that
//     follow the entry
//
// # Guarantees
//
//  1. Output contains exactly the input lines, only reordered within segments.
//  2. Entries with equal keys keep their relative order.
//  3. Sorting sorted output changes nothing.
//  4. No input is rejected: lines the segmenter does not understand are
//     copied through in place.
//
// Options carry the comment marker and the comparator for each call; the
// package holds no state and may be used from many goroutines at once.
package tablesort
