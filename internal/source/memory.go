package source

import (
	"fmt"
	"sort"
)

// MemColumn is one raw column of an in-memory dataset. Exactly one of the
// slices is set, matching the element encoding of the real archive format.
type MemColumn struct {
	Text  [][]byte
	Int   []int64
	Float []float64
}

func (c MemColumn) rows() int {
	switch {
	case c.Text != nil:
		return len(c.Text)
	case c.Int != nil:
		return len(c.Int)
	default:
		return len(c.Float)
	}
}

// MemDataset is an in-memory Dataset used by tests and fixtures.
type MemDataset struct {
	Columns map[string]MemColumn
}

// NumRows returns the shared row count of all columns, and errors when
// columns disagree (a malformed fixture, not a valid dataset).
func (d *MemDataset) NumRows() (int, error) {
	n := -1
	for name, col := range d.Columns {
		r := col.rows()
		if n == -1 {
			n = r
			continue
		}
		if r != n {
			return 0, fmt.Errorf("column %q has %d rows, others have %d", name, r, n)
		}
	}
	if n == -1 {
		return 0, nil
	}
	return n, nil
}

func (d *MemDataset) slice(field string, start, end int) (MemColumn, error) {
	col, ok := d.Columns[field]
	if !ok {
		return MemColumn{}, fmt.Errorf("no column %q", field)
	}
	if start < 0 || end < start || end > col.rows() {
		return MemColumn{}, fmt.Errorf("range [%d,%d) out of bounds for column %q (%d rows)", start, end, field, col.rows())
	}
	return col, nil
}

// ReadText implements Dataset.
func (d *MemDataset) ReadText(field string, start, end int) ([][]byte, error) {
	col, err := d.slice(field, start, end)
	if err != nil {
		return nil, err
	}
	if col.Text == nil {
		return nil, fmt.Errorf("column %q is not byte-encoded", field)
	}
	return col.Text[start:end], nil
}

// ReadInt64 implements Dataset.
func (d *MemDataset) ReadInt64(field string, start, end int) ([]int64, error) {
	col, err := d.slice(field, start, end)
	if err != nil {
		return nil, err
	}
	if col.Int == nil {
		return nil, fmt.Errorf("column %q is not integer-encoded", field)
	}
	return col.Int[start:end], nil
}

// ReadFloat64 implements Dataset.
func (d *MemDataset) ReadFloat64(field string, start, end int) ([]float64, error) {
	col, err := d.slice(field, start, end)
	if err != nil {
		return nil, err
	}
	if col.Float == nil {
		return nil, fmt.Errorf("column %q is not float-encoded", field)
	}
	return col.Float[start:end], nil
}

// MemReader is an in-memory Reader: group name → table name → dataset.
type MemReader struct {
	Data   map[string]map[string]*MemDataset
	Closed bool
}

// Groups implements Reader. Names are returned sorted for determinism.
func (r *MemReader) Groups() ([]string, error) {
	out := make([]string, 0, len(r.Data))
	for g := range r.Data {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

// Tables implements Reader.
func (r *MemReader) Tables(group string) ([]string, error) {
	tables, ok := r.Data[group]
	if !ok {
		return nil, fmt.Errorf("no group %q", group)
	}
	out := make([]string, 0, len(tables))
	for t := range tables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// Dataset implements Reader.
func (r *MemReader) Dataset(group, table string) (Dataset, error) {
	tables, ok := r.Data[group]
	if !ok {
		return nil, fmt.Errorf("no group %q", group)
	}
	ds, ok := tables[table]
	if !ok {
		return nil, fmt.Errorf("no table %q in group %q", table, group)
	}
	return ds, nil
}

// Close implements Reader.
func (r *MemReader) Close() error {
	r.Closed = true
	return nil
}
