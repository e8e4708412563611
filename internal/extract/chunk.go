package extract

import "iter"

// DefaultChunkSize bounds how many rows are pulled from a dataset at once.
// Peak memory is O(chunk size x column width) no matter how large the file is.
const DefaultChunkSize = 1000000

// Range is one contiguous [Start, End) slice of a dataset's rows.
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int { return r.End - r.Start }

// Ranges yields ordered, disjoint row ranges covering [0, total), each at
// most size rows long. A total of zero yields nothing, and an exact multiple
// of size produces no trailing empty range. The sequence is lazy and can be
// ranged over more than once.
func Ranges(total, size int) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		if size <= 0 {
			size = DefaultChunkSize
		}
		for start := 0; start < total; start += size {
			end := start + size
			if end > total {
				end = total
			}
			if !yield(Range{Start: start, End: end}) {
				return
			}
		}
	}
}
