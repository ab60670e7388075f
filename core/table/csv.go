package table

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// missingTokens are read as missing values, matching the common CSV
// conventions for "no value".
var missingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

type csvConfig struct {
	delimiter rune
}

// CSVOption configures ReadCSV.
type CSVOption func(*csvConfig)

// WithDelimiter sets the field delimiter (default ',').
func WithDelimiter(d rune) CSVOption {
	return func(c *csvConfig) {
		c.delimiter = d
	}
}

// LoadInfo describes a file as read, before any cleaning.
type LoadInfo struct {
	Rows    int
	Columns []string
	// Missing holds the per-column missing count in file column order.
	Missing []ColumnCount
}

// ReadCSV reads a delimited file with a header row into a Table.
//
// Columns named by the schema get their declared kind. Other columns are
// Numeric when every non-missing value parses as a float, otherwise
// Categorical. A required column that is absent, or a declared numeric
// column holding text, fails with a ColumnError.
func ReadCSV(r io.Reader, schema Schema, opts ...CSVOption) (*Table, *LoadInfo, error) {
	cfg := csvConfig{delimiter: ','}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := schema.Validate(); err != nil {
		return nil, nil, err
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
		dataframe.WithDelimiter(cfg.delimiter),
	)
	if df.Err != nil {
		return nil, nil, errors.Wrap(df.Err, "read csv")
	}

	names := df.Names()
	if err := schema.Check(names); err != nil {
		return nil, nil, err
	}

	info := &LoadInfo{Rows: df.Nrow(), Columns: append([]string(nil), names...)}
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		s := df.Col(name)
		raw := s.Records()
		nan := s.IsNaN()
		values := make([]string, len(raw))
		missing := 0
		for i := range raw {
			if nan[i] {
				missing++
				continue
			}
			values[i] = raw[i]
		}
		info.Missing = append(info.Missing, ColumnCount{Name: name, Count: missing})

		col, err := buildColumn(schema, name, values)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, col)
	}

	t, err := New(cols...)
	if err != nil {
		return nil, nil, err
	}
	if len(cols) == 0 {
		t.nRows = info.Rows
	}

	log.GetLoggerWithName("table").Info("Loaded table",
		log.StageKey, "load",
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, t.NumCols(),
	)
	return t, info, nil
}

func buildColumn(schema Schema, name string, values []string) (*Column, error) {
	kind, declared := schema.kindOf(name)
	switch {
	case declared && kind == Numeric:
		floats, ok := parseFloats(values)
		if !ok {
			return nil, errors.NewColumnError("load", name, "declared numeric column holds non-numeric values")
		}
		return NewNumericColumn(name, floats), nil
	case declared:
		return NewStringColumn(name, kind, values), nil
	}
	if floats, ok := parseFloats(values); ok {
		return NewNumericColumn(name, floats), nil
	}
	return NewStringColumn(name, Categorical, values), nil
}

// parseFloats parses every value; missing values become NaN. A blank but
// non-empty value such as " " does not parse, so the column stays textual.
func parseFloats(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
