package extract

import "testing"

func collect(total, size int) []Range {
	var out []Range
	for r := range Ranges(total, size) {
		out = append(out, r)
	}
	return out
}

func TestRanges_Coverage(t *testing.T) {
	cases := []struct {
		name  string
		total int
		size  int
		want  int // number of ranges
	}{
		{name: "empty dataset", total: 0, size: 10, want: 0},
		{name: "smaller than chunk", total: 7, size: 10, want: 1},
		{name: "exact multiple", total: 30, size: 10, want: 3},
		{name: "with remainder", total: 35, size: 10, want: 4},
		{name: "single row", total: 1, size: 10, want: 1},
		{name: "chunk of one", total: 3, size: 1, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(tc.total, tc.size)
			if len(got) != tc.want {
				t.Fatalf("ranges: want %d got %d (%v)", tc.want, len(got), got)
			}

			// Union must be exactly [0, total): ordered, disjoint, no gaps.
			next := 0
			for _, r := range got {
				if r.Start != next {
					t.Fatalf("range %v does not start at %d", r, next)
				}
				if r.Len() <= 0 {
					t.Fatalf("empty range %v emitted", r)
				}
				if r.Len() > tc.size {
					t.Fatalf("range %v longer than chunk bound %d", r, tc.size)
				}
				next = r.End
			}
			if next != tc.total {
				t.Fatalf("ranges cover [0,%d), want [0,%d)", next, tc.total)
			}
		})
	}
}

func TestRanges_Restartable(t *testing.T) {
	seq := Ranges(25, 10)
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != 3 || second != 3 {
		t.Fatalf("sequence not restartable: first=%d second=%d", first, second)
	}
}

func TestRanges_EarlyBreak(t *testing.T) {
	n := 0
	for range Ranges(100, 10) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected early break after 2 ranges, got %d", n)
	}
}

func TestRanges_NonPositiveSizeUsesDefault(t *testing.T) {
	got := collect(5, 0)
	if len(got) != 1 || got[0].Start != 0 || got[0].End != 5 {
		t.Fatalf("want single [0,5) range, got %v", got)
	}
}
