package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/core/model"
	"github.com/ezoic/churnscope/core/table"
	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
)

// OneHotEncoder はscikit-learn互換のOne-Hotエンコーダー
// カテゴリカルな文字列データを0/1のバイナリベクトルに変換する
//
// With DropFirst set, the first category of each feature (in sorted order) is
// the reference category and gets no output column, so a feature with k
// categories yields k-1 columns. The empty string is a missing value: it is
// never a category and encodes as all zeros.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories は各特徴量のカテゴリ一覧（ソート済み）
	Categories [][]string

	// CategoryToIdx は各特徴量のカテゴリ→インデックスマップ
	CategoryToIdx []map[string]int

	// NFeatures は入力特徴量数
	NFeatures int

	// NOutputs は出力特徴量数
	NOutputs int

	// DropFirst drops the reference category of every feature.
	DropFirst bool

	// Columns holds the source column names when fitted with FitTable.
	Columns []string
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
//	encoder := preprocessing.NewOneHotEncoder(true)
//	encoded, err := encoder.FitTransformTable(cleaned, cleaned.NamesOfKind(table.Categorical))
func NewOneHotEncoder(dropFirst bool) *OneHotEncoder {
	return &OneHotEncoder{
		BaseEstimator: model.BaseEstimator{ModelType: "OneHotEncoder"},
		DropFirst:     dropFirst,
	}
}

// Fit は訓練データからカテゴリ情報を学習する
//
// data is n_samples × n_features.
func (e *OneHotEncoder) Fit(data [][]string) (err error) {
	defer scigoErrors.Recover(&err, "OneHotEncoder.Fit")
	if len(data) == 0 {
		return scigoErrors.NewModelError("OneHotEncoder.Fit", "empty data", scigoErrors.ErrEmptyData)
	}

	if len(data[0]) == 0 {
		return scigoErrors.NewModelError("OneHotEncoder.Fit", "empty features", scigoErrors.ErrEmptyData)
	}

	nFeatures := len(data[0])

	// 特徴量数の一貫性チェック
	for _, row := range data {
		if len(row) != nFeatures {
			return scigoErrors.NewDimensionError("OneHotEncoder.Fit", nFeatures, len(row), 1)
		}
	}

	e.NFeatures = nFeatures
	e.Categories = make([][]string, nFeatures)
	e.CategoryToIdx = make([]map[string]int, nFeatures)
	e.NOutputs = 0

	for j := 0; j < nFeatures; j++ {
		categorySet := make(map[string]bool)
		for _, row := range data {
			if row[j] != "" {
				categorySet[row[j]] = true
			}
		}

		categories := make([]string, 0, len(categorySet))
		for category := range categorySet {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		e.Categories[j] = categories
		e.CategoryToIdx[j] = make(map[string]int, len(categories))
		for idx, category := range categories {
			e.CategoryToIdx[j][category] = idx
		}
		e.NOutputs += e.outputsFor(j)
	}

	e.SetFitted()
	return nil
}

func (e *OneHotEncoder) outputsFor(j int) int {
	n := len(e.Categories[j])
	if e.DropFirst && n > 0 {
		n--
	}
	return n
}

// Transform は学習済みのカテゴリ情報を使ってデータをone-hot encodingする
//
// Unknown categories and missing values encode as all zeros.
func (e *OneHotEncoder) Transform(data [][]string) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "OneHotEncoder.Transform")
	if !e.IsFitted() {
		return nil, scigoErrors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	if len(data) == 0 {
		return &mat.Dense{}, nil
	}

	nFeatures := len(data[0])
	if nFeatures != e.NFeatures {
		return nil, scigoErrors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, nFeatures, 1)
	}
	if e.NOutputs == 0 {
		return &mat.Dense{}, nil
	}

	result := mat.NewDense(len(data), e.NOutputs, nil)
	for i, row := range data {
		outputIdx := 0
		for j := 0; j < nFeatures; j++ {
			if idx, exists := e.CategoryToIdx[j][row[j]]; exists {
				if e.DropFirst {
					idx--
				}
				if idx >= 0 {
					result.Set(i, outputIdx+idx, 1.0)
				}
			}
			outputIdx += e.outputsFor(j)
		}
	}

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (e *OneHotEncoder) FitTransform(data [][]string) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "OneHotEncoder.FitTransform")
	if err := e.Fit(data); err != nil {
		return nil, err
	}
	return e.Transform(data)
}

// GetFeatureNamesOut は変換後の特徴量の名前を返す
//
// With input names ["Contract", "gender"] and DropFirst, the output is e.g.
// ["Contract_One year", "Contract_Two year", "gender_Male"].
func (e *OneHotEncoder) GetFeatureNamesOut(inputFeatures []string) []string {
	if !e.IsFitted() {
		return nil
	}

	var outputFeatures []string
	for i, categories := range e.Categories {
		inputFeatureName := fmt.Sprintf("x%d", i)
		if i < len(inputFeatures) {
			inputFeatureName = inputFeatures[i]
		}

		if e.DropFirst && len(categories) > 0 {
			categories = categories[1:]
		}
		for _, category := range categories {
			outputFeatures = append(outputFeatures, inputFeatureName+"_"+category)
		}
	}

	return outputFeatures
}

// FitTable learns categories from the named string columns of t.
func (e *OneHotEncoder) FitTable(t *table.Table, columns []string) error {
	rows, err := stringRows(t, columns)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		e.Columns = nil
		e.NFeatures, e.NOutputs = 0, 0
		e.Categories, e.CategoryToIdx = nil, nil
		e.SetFitted()
		return nil
	}
	if err := e.Fit(rows); err != nil {
		return err
	}
	e.Columns = append([]string(nil), columns...)
	return nil
}

// TransformTable replaces the fitted columns of t with Indicator columns.
// The remaining columns keep their order and the indicators follow, grouped
// by source column in fit order. An indicator name that is already taken,
// by a kept column or an earlier indicator, is a ColumnError.
func (e *OneHotEncoder) TransformTable(t *table.Table) (*table.Table, error) {
	if !e.IsFitted() {
		return nil, scigoErrors.NewNotFittedError("OneHotEncoder", "TransformTable")
	}
	out := t.Drop(e.Columns...)
	if len(e.Columns) == 0 {
		return out, nil
	}

	rows, err := stringRows(t, e.Columns)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, scigoErrors.NewModelError("OneHotEncoder.TransformTable", "empty data", scigoErrors.ErrEmptyData)
	}
	encoded, err := e.Transform(rows)
	if err != nil {
		return nil, err
	}

	for j, name := range e.GetFeatureNamesOut(e.Columns) {
		if out.Has(name) {
			return nil, scigoErrors.NewColumnError("encode", name, "one-hot column collides with an existing column")
		}
		values := mat.Col(nil, j, encoded)
		if out, err = out.WithColumn(table.NewIndicatorColumn(name, values)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransformTable fits on the named columns of t and transforms t.
func (e *OneHotEncoder) FitTransformTable(t *table.Table, columns []string) (*table.Table, error) {
	if err := e.FitTable(t, columns); err != nil {
		return nil, err
	}
	return e.TransformTable(t)
}

func stringRows(t *table.Table, columns []string) ([][]string, error) {
	cols := make([]*table.Column, len(columns))
	for j, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			return nil, scigoErrors.NewColumnError("encode", name, "column not found")
		}
		if c.Kind() != table.Categorical {
			return nil, scigoErrors.NewColumnError("encode", name, "column is "+c.Kind().String()+", not categorical")
		}
		cols[j] = c
	}

	rows := make([][]string, t.NumRows())
	for i := range rows {
		rows[i] = make([]string, len(cols))
		for j, c := range cols {
			rows[i][j] = c.Str(i)
		}
	}
	return rows, nil
}

// EncodeBinary replaces the named column with a single Indicator column
// "<name>_<positive>" in the same position, 1 where the value equals positive.
// The column must hold at most two distinct non-missing values, one of
// which must be positive; missing values are an error.
func EncodeBinary(t *table.Table, name, positive string) (*table.Table, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, scigoErrors.NewColumnError("encode", name, "target column not found")
	}
	if col.Kind() != table.Categorical {
		return nil, scigoErrors.NewColumnError("encode", name, "target column is "+col.Kind().String()+", not categorical")
	}

	distinct := make(map[string]bool, 2)
	values := make([]float64, col.Len())
	for i := range values {
		if col.IsMissing(i) {
			return nil, scigoErrors.NewColumnError("encode", name, fmt.Sprintf("missing label at row %d", i))
		}
		v := col.Str(i)
		distinct[v] = true
		if v == positive {
			values[i] = 1
		}
	}
	if len(distinct) > 2 || (len(distinct) == 2 && !distinct[positive]) {
		return nil, scigoErrors.Wrapf(scigoErrors.ErrNotBinary,
			"column %q has %d distinct labels, positive label %q", name, len(distinct), positive)
	}

	indicator := table.NewIndicatorColumn(name+"_"+positive, values)
	renamed, err := t.Rename(func(n string) string {
		if n == name {
			return indicator.Name()
		}
		return n
	})
	if err != nil {
		return nil, err
	}
	return renamed.WithColumn(indicator)
}
