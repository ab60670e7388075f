package analysis

import (
	"io"

	"github.com/ezoic/churnscope/core/table"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
	"github.com/ezoic/churnscope/preprocessing"
)

// ColumnKind pairs a column name with its kind after encoding.
type ColumnKind struct {
	Name string
	Kind table.Kind
}

// CleanResult is the output of the Loader/Cleaner stage.
type CleanResult struct {
	// Table is the cleaned, encoded table.
	Table *table.Table

	// Missing is the raw missing count per column, as loaded.
	Missing []table.ColumnCount
	// Columns lists the columns after coercion and row deletion.
	Columns []string

	Loaded         int
	Coerced        int
	DroppedMissing int
	ZScore         preprocessing.ZScoreReport

	// Encoded lists the categorical columns that were one-hot encoded.
	Encoded []string
	Kinds   []ColumnKind
}

// Skipped returns the outlier features absent from the table.
func (r *CleanResult) Skipped() []string {
	return r.ZScore.Skipped
}

// Load reads a delimited file according to opts.Schema.
func Load(r io.Reader, opts Options) (*table.Table, *table.LoadInfo, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	t, info, err := table.ReadCSV(r, opts.Schema, table.WithDelimiter(delim))
	if err != nil {
		return nil, nil, errors.Wrap(err, "load")
	}
	return t, info, nil
}

// Clean coerces, deletes incomplete rows, filters outliers and encodes.
//
// Steps, in order:
//  1. coerce every Schema.Coerce column to numeric
//  2. drop rows missing any coerced column
//  3. z-score filter Schema.OutlierFeatures, once each
//  4. encode the target as a single indicator
//  5. one-hot encode the other categorical columns with drop-first
func Clean(t *table.Table, info *table.LoadInfo, opts Options) (*CleanResult, error) {
	schema := opts.Schema
	logger := opts.logger("clean")
	res := &CleanResult{Loaded: t.NumRows()}
	if info != nil {
		res.Missing = info.Missing
	}

	var err error
	for _, name := range schema.Coerce {
		var n int
		if t, n, err = preprocessing.CoerceNumeric(t, name); err != nil {
			return nil, err
		}
		res.Coerced += n
	}
	if t, res.DroppedMissing, err = preprocessing.DropMissing(t, schema.Coerce...); err != nil {
		return nil, err
	}
	res.Columns = t.Names()
	logger.Info("Incomplete rows dropped",
		log.OperationKey, "drop_missing",
		log.DroppedKey, res.DroppedMissing,
		log.SamplesKey, t.NumRows(),
	)

	if t, res.ZScore, err = preprocessing.ZScoreFilter(t, schema.OutlierFeatures, schema.ZThreshold); err != nil {
		return nil, err
	}
	logger.Info("Outliers removed",
		log.OperationKey, "zscore",
		log.DroppedKey, res.ZScore.Dropped(),
		log.SamplesKey, t.NumRows(),
	)
	if t.NumRows() == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "clean: no rows left after filtering")
	}

	if t, err = preprocessing.EncodeBinary(t, schema.Target, schema.PositiveLabel); err != nil {
		return nil, errors.Wrapf(err, "clean: encode target %q", schema.Target)
	}

	res.Encoded = t.NamesOfKind(table.Categorical)
	enc := preprocessing.NewOneHotEncoder(true)
	if t, err = enc.FitTransformTable(t, res.Encoded); err != nil {
		return nil, errors.Wrap(err, "clean: one-hot encode")
	}

	for j := 0; j < t.NumCols(); j++ {
		c := t.ColumnAt(j)
		res.Kinds = append(res.Kinds, ColumnKind{Name: c.Name(), Kind: c.Kind()})
	}
	res.Table = t

	logger.Info("Table cleaned",
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, t.NumCols(),
		log.ColumnsKey, len(res.Encoded),
	)
	return res, nil
}
