package extract

import (
	"reflect"
	"testing"

	"github.com/guttosm/tickvault/internal/schema"
	"github.com/guttosm/tickvault/internal/source"
)

func executedDataset() *source.MemDataset {
	return &source.MemDataset{Columns: map[string]source.MemColumn{
		"side":  {Text: [][]byte{[]byte("buy"), []byte("sell"), []byte("buy")}},
		"time":  {Int: []int64{1614601845123456, 1614601846000000, 1614601847500000}},
		"price": {Float: []float64{100.5, 101.0, 99.75}},
		"size":  {Int: []int64{100000000, 50000000, 25000000}},
		"maker_order_id": {Text: [][]byte{
			[]byte("11111111-1111-1111-1111-111111111111"),
			[]byte("22222222-2222-2222-2222-222222222222"),
			[]byte("33333333-3333-3333-3333-333333333333"),
		}},
		"taker_order_id": {Text: [][]byte{
			[]byte("44444444-4444-4444-4444-444444444444"),
			[]byte("55555555-5555-5555-5555-555555555555"),
			[]byte("66666666-6666-6666-6666-666666666666"),
		}},
	}}
}

func TestColumns_ExecutedSchema(t *testing.T) {
	sch, err := schema.Lookup(schema.KindExecuted)
	if err != nil {
		t.Fatalf("schema lookup: %v", err)
	}

	cols, err := Columns(executedDataset(), sch, 7, Range{Start: 0, End: 3})
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != len(sch.Columns) {
		t.Fatalf("got %d columns, want %d", len(cols), len(sch.Columns))
	}
	for i, c := range cols {
		if len(c) != 3 {
			t.Fatalf("column %d has %d rows, want 3", i, len(c))
		}
	}

	// product_id broadcast
	if !reflect.DeepEqual(cols[0], []string{"7", "7", "7"}) {
		t.Fatalf("product column = %v", cols[0])
	}
	// side decoded
	if !reflect.DeepEqual(cols[1], []string{"buy", "sell", "buy"}) {
		t.Fatalf("side column = %v", cols[1])
	}
	// price passed through unscaled
	if !reflect.DeepEqual(cols[3], []string{"100.5", "101", "99.75"}) {
		t.Fatalf("price column = %v", cols[3])
	}
	// size decoded from 1e8 fixed point
	if !reflect.DeepEqual(cols[4], []string{"1", "0.5", "0.25"}) {
		t.Fatalf("size column = %v", cols[4])
	}
}

func TestColumns_SubRange(t *testing.T) {
	sch, err := schema.Lookup(schema.KindExecuted)
	if err != nil {
		t.Fatalf("schema lookup: %v", err)
	}

	cols, err := Columns(executedDataset(), sch, 7, Range{Start: 1, End: 3})
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if !reflect.DeepEqual(cols[1], []string{"sell", "buy"}) {
		t.Fatalf("side sub-range = %v", cols[1])
	}
	if !reflect.DeepEqual(cols[4], []string{"0.5", "0.25"}) {
		t.Fatalf("size sub-range = %v", cols[4])
	}
}

func TestColumns_IdentifierFallbackWholeChunk(t *testing.T) {
	ds := executedDataset()
	ds.Columns["maker_order_id"] = source.MemColumn{Text: [][]byte{
		{0xff, 0xfe}, {0xff}, {0xfe},
	}}
	sch, err := schema.Lookup(schema.KindExecuted)
	if err != nil {
		t.Fatalf("schema lookup: %v", err)
	}

	cols, err := Columns(ds, sch, 7, Range{Start: 0, End: 3})
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	for i, v := range cols[5] {
		if v != "00000000-0000-0000-0000-000000000000" {
			t.Fatalf("maker_order_id[%d] = %q, want sentinel", i, v)
		}
	}
	// taker ids were decodable and must stay intact
	if cols[6][0] != "44444444-4444-4444-4444-444444444444" {
		t.Fatalf("taker_order_id[0] = %q", cols[6][0])
	}
}

func TestColumns_MissingFieldError(t *testing.T) {
	ds := executedDataset()
	delete(ds.Columns, "size")
	sch, err := schema.Lookup(schema.KindExecuted)
	if err != nil {
		t.Fatalf("schema lookup: %v", err)
	}
	if _, err := Columns(ds, sch, 7, Range{Start: 0, End: 3}); err == nil {
		t.Fatalf("expected error for missing raw field")
	}
}

func TestColumns_ReceivedNeedsNoProduct(t *testing.T) {
	ds := &source.MemDataset{Columns: map[string]source.MemColumn{
		"order_id":   {Text: [][]byte{[]byte("aaaa"), []byte("bbbb")}},
		"order_type": {Text: [][]byte{[]byte("limit"), []byte("market")}},
		"side":       {Text: [][]byte{[]byte("buy"), []byte("sell")}},
	}}
	sch, err := schema.Lookup(schema.KindReceived)
	if err != nil {
		t.Fatalf("schema lookup: %v", err)
	}
	cols, err := Columns(ds, sch, 0, Range{Start: 0, End: 2})
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if !reflect.DeepEqual(cols[1], []string{"limit", "market"}) {
		t.Fatalf("order_type = %v", cols[1])
	}
}
