// Package preprocessing provides the cleaning and feature-preparation steps of
// the churn pipeline.
//
// Table-level steps operate on an immutable table.Table and return a new one:
//
//   - CoerceNumeric: parses a text column to numbers, unparseable values become missing
//   - DropMissing: removes rows with a missing value in the given columns
//   - ZScoreFilter: removes outlier rows feature by feature
//   - OneHotEncoder: reference-category (drop-first) dummy encoding
//
// Matrix-level steps follow the scikit-learn API with Fit, Transform and
// FitTransform and can be chained in a pipeline:
//
//   - SimpleImputer: fills missing values with the training column mean
//   - StandardScaler: removes the training mean and scales to unit variance
//
// Example usage:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	if err := scaler.Fit(XTrain); err != nil {
//		return err
//	}
//	XTestScaled, err := scaler.Transform(XTest)
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/churnscope/core/model"
	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// zeroVarianceTol is the standard deviation below which a column is treated as constant.
const zeroVarianceTol = 1e-8

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差 (母標準偏差、ddof=0)
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool

	// FeatureNames optionally names the columns for ZeroVarianceFeatures and logs.
	FeatureNames []string

	zeroVariance []int
}

// NewStandardScaler creates a new StandardScaler for feature standardization.
//
// Parameters:
//   - withMean: whether to center the data at zero by removing the mean
//   - withStd: whether to scale the data to unit variance
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(XTrain)
//	XScaled, err := scaler.Transform(XTest)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		BaseEstimator: model.BaseEstimator{ModelType: "StandardScaler"},
		WithMean:      withMean,
		WithStd:       withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the feature-wise mean and population standard deviation of X.
//
// A column whose standard deviation is below 1e-8 gets scale 1, so it is only
// centered; such columns are reported by ZeroVarianceFeatures and logged.
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - ValueError: if X holds NaN (impute first)
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer scigoErrors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return scigoErrors.NewModelError("StandardScaler.Fit", "empty data", scigoErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.zeroVariance = s.zeroVariance[:0]

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if err := scigoErrors.CheckNumericalStability("StandardScaler.Fit", col, 0); err != nil {
			return scigoErrors.NewValueError("StandardScaler.Fit",
				fmt.Sprintf("column %s contains NaN or Inf; impute before scaling", s.featureName(j)))
		}

		mean, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			s.Mean[j] = mean
		}

		s.Scale[j] = 1.0
		if s.WithStd {
			// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
			if std < zeroVarianceTol {
				s.zeroVariance = append(s.zeroVariance, j)
			} else {
				s.Scale[j] = std
			}
		}
	}

	if len(s.zeroVariance) > 0 {
		s.LogWarn("Zero-variance features are centered only",
			log.OperationKey, log.OperationFit,
			log.ColumnsKey, s.ZeroVarianceFeatures(),
		)
	}
	s.LogDebug("Scaler fitted", log.SamplesKey, r, log.FeaturesKey, c)

	s.SetFitted()
	return nil
}

// Transform applies (X - mean) / scale using the fitted statistics.
//
// Errors:
//   - NotFittedError: if the scaler hasn't been fitted yet
//   - DimensionError: if X doesn't match the number of features from training
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, scigoErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, scigoErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)

	return result, nil
}

// FitTransform fits the scaler and transforms the training data in one step.
func (s *StandardScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "StandardScaler.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// ZeroVarianceFeatures returns the names (or "x<j>" indices) of the columns
// that were constant at fit time.
func (s *StandardScaler) ZeroVarianceFeatures() []string {
	names := make([]string, len(s.zeroVariance))
	for k, j := range s.zeroVariance {
		names[k] = s.featureName(j)
	}
	return names
}

func (s *StandardScaler) featureName(j int) string {
	if j < len(s.FeatureNames) {
		return s.FeatureNames[j]
	}
	return fmt.Sprintf("x%d", j)
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
