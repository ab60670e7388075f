package table

import (
	"math"
)

// Kind classifies a column for encoding and modelling.
type Kind int

const (
	// Numeric columns hold float64 values; NaN marks a missing value.
	Numeric Kind = iota
	// Categorical columns hold strings; the empty string marks a missing value.
	Categorical
	// Identifier columns hold strings that are never encoded or modelled.
	Identifier
	// Indicator columns hold 0/1 values produced by one-hot encoding.
	Indicator
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Identifier:
		return "identifier"
	case Indicator:
		return "indicator"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the kind is stored as float64.
func (k Kind) IsFloat() bool {
	return k == Numeric || k == Indicator
}

// Column is a named, typed, immutable vector of values.
type Column struct {
	name   string
	kind   Kind
	floats []float64
	strs   []string
}

// NewNumericColumn creates a Numeric column. values is copied.
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{name: name, kind: Numeric, floats: append([]float64(nil), values...)}
}

// NewIndicatorColumn creates an Indicator column. values is copied.
func NewIndicatorColumn(name string, values []float64) *Column {
	return &Column{name: name, kind: Indicator, floats: append([]float64(nil), values...)}
}

// NewStringColumn creates a Categorical or Identifier column. values is copied.
// Any other kind is treated as Categorical.
func NewStringColumn(name string, kind Kind, values []string) *Column {
	if kind != Identifier {
		kind = Categorical
	}
	return &Column{name: name, kind: kind, strs: append([]string(nil), values...)}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of values.
func (c *Column) Len() int {
	if c.kind.IsFloat() {
		return len(c.floats)
	}
	return len(c.strs)
}

// Float returns the i-th value of a float column, NaN for string columns.
func (c *Column) Float(i int) float64 {
	if !c.kind.IsFloat() {
		return math.NaN()
	}
	return c.floats[i]
}

// Str returns the i-th value of a string column, "" for float columns.
func (c *Column) Str(i int) string {
	if c.kind.IsFloat() {
		return ""
	}
	return c.strs[i]
}

// IsMissing reports whether the i-th value is missing.
func (c *Column) IsMissing(i int) bool {
	if c.kind.IsFloat() {
		return math.IsNaN(c.floats[i])
	}
	return c.strs[i] == ""
}

// MissingCount returns the number of missing values.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Floats returns a copy of the values of a float column, nil otherwise.
func (c *Column) Floats() []float64 {
	if !c.kind.IsFloat() {
		return nil
	}
	return append([]float64(nil), c.floats...)
}

// Strings returns a copy of the values of a string column, nil otherwise.
func (c *Column) Strings() []string {
	if c.kind.IsFloat() {
		return nil
	}
	return append([]string(nil), c.strs...)
}

// withName returns a shallow copy under a new name; values are shared since
// columns are never mutated.
func (c *Column) withName(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

func (c *Column) take(idx []int) *Column {
	cp := &Column{name: c.name, kind: c.kind}
	if c.kind.IsFloat() {
		cp.floats = make([]float64, len(idx))
		for k, i := range idx {
			cp.floats[k] = c.floats[i]
		}
		return cp
	}
	cp.strs = make([]string, len(idx))
	for k, i := range idx {
		cp.strs[k] = c.strs[i]
	}
	return cp
}
