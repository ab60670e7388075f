// Package analysis runs the churn study as four explicit stages: Clean,
// Analyze, Split and Evaluate. Each stage takes immutable inputs and returns
// a result value; Run chains them.
package analysis

import (
	"github.com/ezoic/churnscope/core/table"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
	"github.com/ezoic/churnscope/sklearn/linear_model"
)

// ModelOptions configures one logistic-regression fit.
type ModelOptions struct {
	Penalty     string
	C           float64
	MaxIter     int
	Tol         float64
	ClassWeight string
}

// Options configures a run.
type Options struct {
	Schema    table.Schema
	Delimiter rune

	TestSize float64
	Seed     int64

	// Analyzer is the diagnostic importance model fitted on all rows.
	Analyzer ModelOptions
	// Evaluator is the held-out evaluation model.
	Evaluator ModelOptions

	// Logger receives stage logs. Nil uses the global provider.
	Logger log.Logger
}

// DefaultSchema describes the Telco customer churn file.
func DefaultSchema() table.Schema {
	return table.Schema{
		ID:              "customerID",
		Target:          "Churn",
		PositiveLabel:   "Yes",
		Coerce:          []string{"TotalCharges"},
		OutlierFeatures: []string{"tenure", "MonthlyCharges", "TotalCharges"},
		ZThreshold:      3,
	}
}

// DefaultOptions returns the options of the reference analysis.
func DefaultOptions() Options {
	return Options{
		Schema:    DefaultSchema(),
		Delimiter: ',',
		TestSize:  0.2,
		Seed:      42,
		Analyzer: ModelOptions{
			Penalty: "l2", C: 1, MaxIter: 1000, Tol: 1e-4, ClassWeight: "none",
		},
		Evaluator: ModelOptions{
			Penalty: "l2", C: 1, MaxIter: 2000, Tol: 1e-4, ClassWeight: "balanced",
		},
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if err := o.Schema.Validate(); err != nil {
		return err
	}
	if !(o.TestSize > 0 && o.TestSize < 1) {
		return errors.NewValidationError("test_size", "must be in (0, 1)", o.TestSize)
	}
	return nil
}

func (o Options) logger(stage string) log.Logger {
	l := o.Logger
	if l == nil {
		l = log.GetLoggerWithName("analysis")
	}
	return l.With(log.StageKey, stage)
}

func (m ModelOptions) newModel(logger log.Logger) *linear_model.LogisticRegression {
	return linear_model.NewLogisticRegression(
		linear_model.WithLRPenalty(m.Penalty),
		linear_model.WithLRC(m.C),
		linear_model.WithLRMaxIter(m.MaxIter),
		linear_model.WithLRTol(m.Tol),
		linear_model.WithLRClassWeight(m.ClassWeight),
		linear_model.WithLRLogger(logger),
	)
}
