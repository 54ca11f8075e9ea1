package lang

import (
	"cmp"
	"iter"
	"log/slog"
	"slices"
)

// Table is a fixed set of named columns and a sequence of rows whose length
// always equals the number of columns.
//
// Every operation returns a new Table; the receiver is never modified.
type Table struct {
	columns []string
	rows    [][]Value
}

// NewTable builds a table, failing with [ErrColumnMismatch] if a column
// name repeats or any row's length differs from the number of columns.
func NewTable(columns []string, rows ...[]Value) (*Table, error) {
	if err := uniqueColumns(columns); err != nil {
		return nil, err
	}

	t := &Table{columns: slices.Clone(columns)}

	return t.Insert(rows...)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.rows)
}

// Row returns row i. The slice must not be modified.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Rows iterates the rows in order.
func (t *Table) Rows() iter.Seq2[int, []Value] {
	return func(yield func(int, []Value) bool) {
		for i, r := range t.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.columns, name)
}

func (t *Table) columnIndex(name string) (int, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return -1, ErrColumnNotFound.Errorf("no column %q", name).
			With(slog.Any("columns", t.columns))
	}

	return i, nil
}

// Column returns the values of one column, top to bottom.
func (t *Table) Column(name string) ([]Value, error) {
	i, err := t.columnIndex(name)
	if err != nil {
		return nil, err
	}

	out := make([]Value, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}

	return out, nil
}

// RowMap returns row i as a Map from column name to value.
func (t *Table) RowMap(i int) *Map {
	m := NewMap()
	for c, name := range t.columns {
		m.Set(name, t.rows[i][c])
	}

	return m
}

// Insert returns a table with rows appended in order. If any row's length
// differs from the column count no row is added and [ErrColumnMismatch] is
// returned.
func (t *Table) Insert(rows ...[]Value) (*Table, error) {
	for i, r := range rows {
		if len(r) != len(t.columns) {
			return nil, ErrColumnMismatch.Errorf(
				"row %d has %d values, table has %d columns",
				i, len(r), len(t.columns),
			)
		}
	}

	out := &Table{
		columns: t.columns,
		rows:    make([][]Value, 0, len(t.rows)+len(rows)),
	}

	out.rows = append(out.rows, t.rows...)
	for _, r := range rows {
		out.rows = append(out.rows, slices.Clone(r))
	}

	return out, nil
}

func uniqueColumns(columns []string) error {
	seen := make(map[string]struct{}, len(columns))

	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return ErrColumnMismatch.Errorf("duplicate column %q", c).
				With(slog.String("column", c))
		}

		seen[c] = struct{}{}
	}

	return nil
}

// Select projects the named columns, in the requested order. Naming a
// column twice fails with [ErrColumnMismatch].
func (t *Table) Select(columns ...string) (*Table, error) {
	if err := uniqueColumns(columns); err != nil {
		return nil, err
	}

	idx := make([]int, len(columns))

	for i, name := range columns {
		c, err := t.columnIndex(name)
		if err != nil {
			return nil, err
		}

		idx[i] = c
	}

	out := &Table{
		columns: slices.Clone(columns),
		rows:    make([][]Value, len(t.rows)),
	}

	for r, row := range t.rows {
		proj := make([]Value, len(idx))
		for i, c := range idx {
			proj[i] = row[c]
		}

		out.rows[r] = proj
	}

	return out, nil
}

// Where keeps the rows for which keep returns true, in order.
func (t *Table) Where(keep func(row []Value) (bool, error)) (*Table, error) {
	out := &Table{columns: t.columns}

	for _, row := range t.rows {
		ok, err := keep(row)
		if err != nil {
			return nil, err
		}

		if ok {
			out.rows = append(out.rows, row)
		}
	}

	return out, nil
}

// SortBy returns the rows stably sorted by the natural order of one column.
// Rows with equal keys keep their relative order.
func (t *Table) SortBy(column string) (*Table, error) {
	c, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}

	out := &Table{columns: t.columns, rows: slices.Clone(t.rows)}

	slices.SortStableFunc(out.rows, func(a, b []Value) int {
		return a[c].Compare(b[c])
	})

	return out, nil
}

// Find returns the index of the first row whose column equals v, or -1.
func (t *Table) Find(column string, v Value) (int, error) {
	c, err := t.columnIndex(column)
	if err != nil {
		return -1, err
	}

	return slices.IndexFunc(t.rows, func(row []Value) bool {
		return row[c].Equal(v)
	}), nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: slices.Clone(t.columns),
		rows:    make([][]Value, len(t.rows)),
	}

	for i, row := range t.rows {
		r := make([]Value, len(row))
		for j, v := range row {
			r[j] = v.Clone()
		}

		out.rows[i] = r
	}

	return out
}

// Equal reports whether t and o have the same columns and rows in the same
// order.
func (t *Table) Equal(o *Table) bool {
	if !slices.Equal(t.columns, o.columns) || len(t.rows) != len(o.rows) {
		return false
	}

	for i := range t.rows {
		if !slices.EqualFunc(t.rows[i], o.rows[i], Value.Equal) {
			return false
		}
	}

	return true
}

func (t *Table) compare(o *Table) int {
	if c := slices.Compare(t.columns, o.columns); c != 0 {
		return c
	}

	for i := range min(len(t.rows), len(o.rows)) {
		if c := slices.CompareFunc(t.rows[i], o.rows[i], Value.Compare); c != 0 {
			return c
		}
	}

	return cmp.Compare(len(t.rows), len(o.rows))
}
