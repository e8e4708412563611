// Package schema is the static registry mapping each event kind to its fact
// table, its ordered output columns, and the transform each column needs.
// Selecting a Schema once per table replaces re-testing the table name at
// every field.
package schema

import "fmt"

// FieldType tags how a raw source column is converted before serialization.
type FieldType int

const (
	// ProductRef broadcasts the resolved product id over the chunk.
	ProductRef FieldType = iota
	// Text decodes raw bytes to UTF-8 strings (side, reason, order_type).
	Text
	// Identifier decodes raw bytes to UTF-8 strings with an all-or-nothing
	// nil-UUID fallback for the whole chunk on decode failure.
	Identifier
	// Scaled divides 1e8 fixed-point integers into decimals (sizes).
	Scaled
	// Price passes float64 values through unscaled.
	Price
	// Timestamp converts microsecond epoch integers to timestamp strings.
	Timestamp
)

// SizeScale is the fixed-point denominator for size-like columns.
const SizeScale int64 = 100000000

// Column is one output column of a fact table: its name in the database,
// the raw field it is read from (empty for ProductRef), and its transform.
type Column struct {
	Name  string
	Field string
	Type  FieldType
}

// Schema describes the full load plan for one event kind.
type Schema struct {
	Kind    string
	Table   string
	Columns []Column
}

// The five event kinds. Group names inside a source file must match these.
const (
	KindExecuted = "executed"
	KindPlaced   = "placed"
	KindAmended  = "amended"
	KindRemoved  = "removed"
	KindReceived = "received"
)

// registry holds one tagged variant per event kind. Column order here is the
// exact order rows are serialized and COPYed in.
var registry = map[string]Schema{
	KindExecuted: {
		Kind:  KindExecuted,
		Table: "tick_data_executed",
		Columns: []Column{
			{Name: "product_id", Type: ProductRef},
			{Name: "side", Field: "side", Type: Text},
			{Name: "time", Field: "time", Type: Timestamp},
			{Name: "price", Field: "price", Type: Price},
			{Name: "size", Field: "size", Type: Scaled},
			{Name: "maker_order_id", Field: "maker_order_id", Type: Identifier},
			{Name: "taker_order_id", Field: "taker_order_id", Type: Identifier},
		},
	},
	KindPlaced: {
		Kind:  KindPlaced,
		Table: "tick_data_placed",
		Columns: []Column{
			{Name: "product_id", Type: ProductRef},
			{Name: "side", Field: "side", Type: Text},
			{Name: "time", Field: "time", Type: Timestamp},
			{Name: "price", Field: "price", Type: Price},
			{Name: "remaining_size", Field: "remaining_size", Type: Scaled},
			{Name: "order_id", Field: "order_id", Type: Identifier},
		},
	},
	KindAmended: {
		Kind:  KindAmended,
		Table: "tick_data_amended",
		Columns: []Column{
			{Name: "product_id", Type: ProductRef},
			{Name: "side", Field: "side", Type: Text},
			{Name: "time", Field: "time", Type: Timestamp},
			{Name: "price", Field: "price", Type: Price},
			{Name: "old_size", Field: "old_size", Type: Scaled},
			{Name: "new_size", Field: "new_size", Type: Scaled},
			{Name: "order_id", Field: "order_id", Type: Identifier},
		},
	},
	KindRemoved: {
		Kind:  KindRemoved,
		Table: "tick_data_removed",
		Columns: []Column{
			{Name: "product_id", Type: ProductRef},
			{Name: "side", Field: "side", Type: Text},
			{Name: "time", Field: "time", Type: Timestamp},
			{Name: "price", Field: "price", Type: Price},
			{Name: "remaining_size", Field: "remaining_size", Type: Scaled},
			{Name: "reason", Field: "reason", Type: Text},
			{Name: "order_id", Field: "order_id", Type: Identifier},
		},
	},
	KindReceived: {
		Kind:  KindReceived,
		Table: "tick_data_received",
		Columns: []Column{
			{Name: "order_id", Field: "order_id", Type: Identifier},
			{Name: "order_type", Field: "order_type", Type: Text},
			{Name: "side", Field: "side", Type: Text},
		},
	},
}

// Lookup returns the Schema for an event kind. An unknown kind is an error,
// never a silent no-op: it means the source layout drifted from what this
// pipeline understands.
func Lookup(kind string) (Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return Schema{}, fmt.Errorf("unknown event kind %q", kind)
	}
	return s, nil
}

// Kinds returns all registered event kind names.
func Kinds() []string {
	return []string{KindExecuted, KindPlaced, KindAmended, KindRemoved, KindReceived}
}

// HasProductRef reports whether the schema emits a product dimension key.
func (s Schema) HasProductRef() bool {
	for _, c := range s.Columns {
		if c.Type == ProductRef {
			return true
		}
	}
	return false
}

// ColumnNames returns the ordered output column names for COPY.
func (s Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// RawFields returns the distinct raw dataset fields the schema reads,
// in column order. ProductRef columns have no raw field and are skipped.
func (s Schema) RawFields() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Field != "" {
			out = append(out, c.Field)
		}
	}
	return out
}
