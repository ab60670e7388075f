// Standard attribute keys. Keys are hierarchical ("model.name",
// "data.samples") so records from different stages can be filtered together.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "LogisticRegression".
	ModelNameKey = "model.name"

	// OperationKey is the operation being performed: "fit", "transform", "predict".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or named logger emitting the record.
	ComponentKey = "ml.component"

	// StageKey names the pipeline stage: "load", "clean", "analyze", "split", "evaluate".
	StageKey = "pipeline.stage"

	// RunIDKey carries the per-run UUID.
	RunIDKey = "run.id"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnKey   = "data.column"
	ColumnsKey  = "data.columns"
	DroppedKey  = "data.dropped"
)

// Optimisation and evaluation.
const (
	IterationsKey = "optim.iterations"
	LossKey       = "optim.loss"
	AccuracyKey   = "metric.accuracy"
	PathKey       = "io.path"
)

// Standard operation values.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationPredict      = "predict"
)
