package serialize

import (
	"strings"
	"testing"
)

func TestChunk_RowMajorOrder(t *testing.T) {
	// Column order mirrors the executed schema:
	// product, side, time, price, size, maker_order_id, taker_order_id
	cols := [][]string{
		{"7", "7", "7"},
		{"buy", "sell", "buy"},
		{"2021-03-01 12:30:45.123456", "2021-03-01 12:30:46", "2021-03-01 12:30:47.5"},
		{"100.5", "101", "99.75"},
		{"1", "0.5", "0.25"},
		{"m1", "m2", "m3"},
		{"t1", "t2", "t3"},
	}

	buf, err := Chunk(cols)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	want := []string{
		"7\tbuy\t2021-03-01 12:30:45.123456\t100.5\t1\tm1\tt1",
		"7\tsell\t2021-03-01 12:30:46\t101\t0.5\tm2\tt2",
		"7\tbuy\t2021-03-01 12:30:47.5\t99.75\t0.25\tm3\tt3",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d = %q, want %q", i, lines[i], w)
		}
	}

	// Every row carries exactly one field per column, no extras.
	for i, line := range lines {
		if got := len(strings.Split(line, "\t")); got != len(cols) {
			t.Fatalf("line %d has %d fields, want %d", i, got, len(cols))
		}
	}
}

func TestChunk_RaggedColumnsError(t *testing.T) {
	if _, err := Chunk([][]string{{"a", "b"}, {"c"}}); err == nil {
		t.Fatalf("expected error for ragged columns")
	}
}

func TestChunk_Empty(t *testing.T) {
	buf, err := Chunk(nil)
	if err != nil || buf.Len() != 0 {
		t.Fatalf("Chunk(nil) = %q, %v", buf, err)
	}

	buf, err = Chunk([][]string{{}, {}})
	if err != nil || buf.Len() != 0 {
		t.Fatalf("Chunk(empty cols) = %q, %v", buf, err)
	}
}
