// Package model provides the core estimator abstractions shared by the
// preprocessing transformers and the logistic-regression classifier.
//
// The package defines:
//
//   - BaseEstimator: fitted-state tracking and an optional logger
//   - Transformer, Predictor, Classifier: the sklearn-shaped method sets
//     that pipeline steps and evaluators are written against
//
// Example usage:
//
//	type MyModel struct {
//		model.BaseEstimator
//		// model-specific fields
//	}
//
//	func (m *MyModel) Fit(X, y mat.Matrix) error {
//		// training logic
//		m.SetFitted() // mark as trained
//		return nil
//	}
package model

import (
	"github.com/ezoic/churnscope/pkg/log"
)

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

// BaseEstimator is the base structure for all estimators
type BaseEstimator struct {
	// State holds the model's learning state.
	State EstimatorState

	// ModelType identifies the type of model, used as the logger name.
	ModelType string

	logger log.Logger
}

// IsFitted returns whether the model has been fitted with training data.
//
// Example:
//
//	if !model.IsFitted() {
//	    if err := model.Fit(X, y); err != nil {
//	        return err
//	    }
//	}
//	predictions, err := model.Predict(XTest)
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted (trained).
// Called by model implementations at the end of a successful Fit.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to its initial untrained state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}

// SetLogger sets the logger for this estimator.
func (e *BaseEstimator) SetLogger(logger log.Logger) {
	e.logger = logger
}

// Logger returns the estimator's logger. When none has been set, a logger
// named after ModelType is taken from the global provider.
func (e *BaseEstimator) Logger() log.Logger {
	if e.logger == nil {
		name := e.ModelType
		if name == "" {
			name = "estimator"
		}
		e.logger = log.GetLoggerWithName(name)
	}
	return e.logger
}

// LogDebug logs a debug-level message.
func (e *BaseEstimator) LogDebug(msg string, fields ...interface{}) {
	e.Logger().Debug(msg, append([]interface{}{log.ModelNameKey, e.ModelType}, fields...)...)
}

// LogWarn logs a warning-level message.
func (e *BaseEstimator) LogWarn(msg string, fields ...interface{}) {
	e.Logger().Warn(msg, append([]interface{}{log.ModelNameKey, e.ModelType}, fields...)...)
}
