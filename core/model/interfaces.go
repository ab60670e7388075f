package model

import "gonum.org/v1/gonum/mat"

// Fitter learns parameters from data.
type Fitter interface {
	IsFitted() bool
}

// Transformer learns a column-wise transform on training data and applies it.
type Transformer interface {
	Fitter

	// Fit learns the parameters needed by Transform.
	Fit(X mat.Matrix) error

	// Transform applies the learned parameters to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and transforms it.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Predictor is a supervised estimator.
type Predictor interface {
	Fitter

	// Fit trains the estimator on X with targets y (n x 1).
	Fit(X, y mat.Matrix) error

	// Predict returns one prediction per row of X as an n x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is a Predictor that also reports class probabilities.
type Classifier interface {
	Predictor

	// PredictProba returns an n x 2 matrix of [P(class 0), P(class 1)].
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}
