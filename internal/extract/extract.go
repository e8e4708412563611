// Package extract pulls bounded slices of a columnar dataset and converts
// them into output-ready string columns, one chunk at a time.
package extract

import (
	"fmt"
	"strconv"

	"github.com/guttosm/tickvault/internal/schema"
	"github.com/guttosm/tickvault/internal/source"
	"github.com/guttosm/tickvault/internal/transform"
)

// Columns reads the raw fields a schema needs from ds, sliced to r, applies
// each column's transform, and returns the transformed columns in the
// schema's output order. Every returned column has length r.Len().
//
// productID is broadcast into ProductRef columns; callers must have resolved
// it before extracting (schemas without a ProductRef column ignore it).
func Columns(ds source.Dataset, sch schema.Schema, productID int64, r Range) ([][]string, error) {
	out := make([][]string, 0, len(sch.Columns))

	for _, col := range sch.Columns {
		var (
			vals []string
			err  error
		)

		switch col.Type {
		case schema.ProductRef:
			vals = transform.Broadcast(strconv.FormatInt(productID, 10), r.Len())

		case schema.Text:
			var raw [][]byte
			if raw, err = ds.ReadText(col.Field, r.Start, r.End); err == nil {
				vals, err = transform.DecodeText(raw)
			}

		case schema.Identifier:
			var raw [][]byte
			if raw, err = ds.ReadText(col.Field, r.Start, r.End); err == nil {
				vals = transform.DecodeIdentifiers(raw)
			}

		case schema.Scaled:
			var raw []int64
			if raw, err = ds.ReadInt64(col.Field, r.Start, r.End); err == nil {
				vals = transform.FormatFloats(transform.ScaledDecimal(raw, schema.SizeScale))
			}

		case schema.Price:
			var raw []float64
			if raw, err = ds.ReadFloat64(col.Field, r.Start, r.End); err == nil {
				vals = transform.FormatFloats(raw)
			}

		case schema.Timestamp:
			var raw []int64
			if raw, err = ds.ReadInt64(col.Field, r.Start, r.End); err == nil {
				vals = transform.Timestamps(raw)
			}

		default:
			err = fmt.Errorf("unhandled field type %d", col.Type)
		}

		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		out = append(out, vals)
	}

	return out, nil
}
