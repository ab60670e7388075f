// Package table provides an immutable, column-oriented data table with typed
// columns, plus CSV ingestion against an explicit Schema.
//
// Every operation returns a new Table; column values are never modified in
// place, so a Table can be shared freely between pipeline stages.
package table

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/pkg/errors"
)

// Table is an ordered set of equal-length columns with unique names.
type Table struct {
	cols  []*Column
	index map[string]int
	nRows int
}

// New creates a Table from columns. Names must be unique and all columns
// must have the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for j, c := range cols {
		if _, dup := t.index[c.name]; dup {
			return nil, errors.NewColumnError("table", c.name, "duplicate column name")
		}
		if j == 0 {
			t.nRows = c.Len()
		} else if c.Len() != t.nRows {
			return nil, errors.NewDimensionError("table.New", t.nRows, c.Len(), 0)
		}
		t.index[c.name] = j
	}
	return t, nil
}

func mustNew(cols []*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		// Only reachable from internal operations that preserve the invariants.
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for j, c := range t.cols {
		names[j] = c.name
	}
	return names
}

// Has reports whether a column named name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the column named name.
func (t *Table) Column(name string) (*Column, bool) {
	j, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[j], true
}

// ColumnAt returns the j-th column.
func (t *Table) ColumnAt(j int) *Column { return t.cols[j] }

// NamesOfKind returns, in order, the names of columns whose kind is one of kinds.
func (t *Table) NamesOfKind(kinds ...Kind) []string {
	var names []string
	for _, c := range t.cols {
		for _, k := range kinds {
			if c.kind == k {
				names = append(names, c.name)
				break
			}
		}
	}
	return names
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.nRows)
	for i := 0; i < t.nRows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// Take returns the rows at idx, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for j, c := range t.cols {
		cols[j] = c.take(idx)
	}
	out := mustNew(cols)
	if len(cols) == 0 {
		out.nRows = len(idx)
	}
	return out
}

// Drop returns the table without the named columns. Absent names are ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	cols := make([]*Column, 0, len(t.cols))
	for _, c := range t.cols {
		if !drop[c.name] {
			cols = append(cols, c)
		}
	}
	out := mustNew(cols)
	if len(cols) == 0 {
		out.nRows = t.nRows
	}
	return out
}

// Rename applies fn to every column name. Two columns mapping to the same
// name is an error.
func (t *Table) Rename(fn func(string) string) (*Table, error) {
	cols := make([]*Column, len(t.cols))
	seen := make(map[string]string, len(t.cols))
	for j, c := range t.cols {
		name := fn(c.name)
		if prev, dup := seen[name]; dup {
			return nil, errors.NewColumnError("rename", name,
				"columns "+prev+" and "+c.name+" collide after renaming")
		}
		seen[name] = c.name
		cols[j] = c.withName(name)
	}
	return New(cols...)
}

// WithColumn returns a table where c replaces the column of the same name in
// place, or is appended when no such column exists.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	if c.Len() != t.nRows && len(t.cols) > 0 {
		return nil, errors.NewDimensionError("table.WithColumn", t.nRows, c.Len(), 0)
	}
	cols := append([]*Column(nil), t.cols...)
	if j, ok := t.index[c.name]; ok {
		cols[j] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Matrix returns the named float columns as an n x len(names) matrix.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if t.nRows == 0 || len(names) == 0 {
		return nil, errors.ErrEmptyData
	}
	m := mat.NewDense(t.nRows, len(names), nil)
	for j, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, errors.NewColumnError("matrix", n, "column not found")
		}
		if !c.kind.IsFloat() {
			return nil, errors.NewColumnError("matrix", n, "column is "+c.kind.String()+", not numeric")
		}
		m.SetCol(j, c.floats)
	}
	return m, nil
}
