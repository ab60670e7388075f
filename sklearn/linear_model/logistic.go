// Package linear_model provides a binary logistic-regression classifier
// compatible with scikit-learn's LogisticRegression (solver="lbfgs").
package linear_model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/ezoic/churnscope/core/model"
	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

const (
	solverLBFGS        = "lbfgs"
	penaltyL2          = "l2"
	penaltyNone        = "none"
	classWeightNone    = "none"
	classWeightBalance = "balanced"
	epsilonSmall       = 1e-15
	regularizationHalf = 0.5
	decisionThreshold  = 0.5
)

// LogisticRegression implements binary logistic regression.
//
// The objective follows scikit-learn:
//
//	C · Σ sᵢ·logloss(yᵢ, σ(w·xᵢ + b)) + ½‖w‖²
//
// where sᵢ is the class weight of sample i. It is minimised in the
// equivalent form (1/n)·Σ sᵢ·logloss + ½/(C·n)·‖w‖², which has the same
// minimiser and better-scaled gradients. The intercept is not penalised.
// Weights start at zero, so fits are deterministic.
type LogisticRegression struct {
	state  *model.StateManager // State management (composition)
	logger log.Logger

	// Hyperparameters
	penalty      string  // Regularization: "l2" or "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	classWeight  string  // Class weight: "balanced" or "none"
	maxIter      int     // Maximum iterations
	tol          float64 // Gradient infinity-norm tolerance

	// Model parameters
	coef_         []float64
	intercept_    float64
	classes_      []int
	classWeights_ map[int]float64
	nFeatures_    int
	nIter_        int
	converged_    bool
	loss_         float64
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier with
// scikit-learn defaults: l2 penalty, C=1, intercept, no class weights,
// max_iter=100, tol=1e-4.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      penaltyL2,
		C:            1.0,
		fitIntercept: true,
		classWeight:  classWeightNone,
		maxIter:      100,
		tol:          1e-4,
	}

	for _, opt := range opts {
		opt(lr)
	}
	if lr.logger == nil {
		lr.logger = log.GetLoggerWithName("LogisticRegression")
	}

	return lr
}

// Helper functions for numerical stability

// stableSigmoid computes sigmoid(z) in a numerically stable way.
func stableSigmoid(z float64) float64 {
	if z >= 0 {
		ez := math.Exp(-z)
		return 1.0 / (1.0 + ez)
	}
	ez := math.Exp(z)
	return ez / (1.0 + ez)
}

// clampProbability clamps probability to avoid log(0).
func clampProbability(p float64) float64 {
	if p < epsilonSmall {
		return epsilonSmall
	}
	if p > 1-epsilonSmall {
		return 1 - epsilonSmall
	}
	return p
}

// Option functions

// WithLRPenalty sets the regularization type ("l2" or "none").
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRClassWeight sets the class weighting ("balanced" or "none").
func WithLRClassWeight(weight string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.classWeight = weight
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRLogger sets the logger used for fit diagnostics.
func WithLRLogger(logger log.Logger) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.logger = logger
	}
}

// validate checks the hyperparameters.
func (lr *LogisticRegression) validate() error {
	if lr.penalty != penaltyL2 && lr.penalty != penaltyNone {
		return scigoErrors.NewValidationError("penalty", "lbfgs supports only l2 or none penalty", lr.penalty)
	}
	if lr.penalty == penaltyL2 && !(lr.C > 0) {
		return scigoErrors.NewValidationError("C", "must be > 0 for l2 penalty", lr.C)
	}
	if lr.classWeight != classWeightNone && lr.classWeight != classWeightBalance && lr.classWeight != "" {
		return scigoErrors.NewValidationError("class_weight", "must be balanced or none", lr.classWeight)
	}
	if lr.maxIter <= 0 {
		return scigoErrors.NewValidationError("max_iter", "must be positive", lr.maxIter)
	}
	if !(lr.tol > 0) {
		return scigoErrors.NewValidationError("tol", "must be positive", lr.tol)
	}
	return nil
}

// Fit trains the model on X (n x d) and binary labels y (n x 1, values 0/1).
//
// Reaching max_iter, or a line search that stops making progress at a finite
// loss, raises a ConvergenceWarning and keeps the last iterate.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer scigoErrors.Recover(&err, "LogisticRegression.Fit")
	if err := lr.validate(); err != nil {
		return err
	}

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return scigoErrors.NewModelError("LogisticRegression.Fit", "empty data", scigoErrors.ErrEmptyData)
	}
	if nSamples != yRows {
		return scigoErrors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return scigoErrors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}

	xD := mat.DenseCopyOf(X)
	if err := scigoErrors.CheckMatrix("LogisticRegression.Fit", xD, nSamples, nFeatures, 0); err != nil {
		return err
	}

	yBinary := make([]float64, nSamples)
	counts := map[int]int{}
	for i := range nSamples {
		v := y.At(i, 0)
		if v != 0 && v != 1 {
			return scigoErrors.Wrapf(scigoErrors.ErrNotBinary, "label %v at row %d", v, i)
		}
		yBinary[i] = v
		counts[int(v)]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return scigoErrors.NewValueError("LogisticRegression.Fit",
			"needs samples of at least 2 classes in the data")
	}

	lr.classes_ = []int{0, 1}
	lr.nFeatures_ = nFeatures
	lr.classWeights_ = lr.computeClassWeights(counts, nSamples)
	sampleWeight := make([]float64, nSamples)
	for i, v := range yBinary {
		sampleWeight[i] = lr.classWeights_[int(v)]
	}

	if err := lr.fitBinaryLBFGS(xD, yBinary, sampleWeight); err != nil {
		return err
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()

	lr.logger.Debug("Logistic regression fitted",
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationsKey, lr.nIter_,
		log.LossKey, lr.loss_,
	)
	return nil
}

// computeClassWeights returns n/(2·count_c) per class for "balanced", 1 otherwise.
func (lr *LogisticRegression) computeClassWeights(counts map[int]int, nSamples int) map[int]float64 {
	weights := make(map[int]float64, len(counts))
	for class, count := range counts {
		if lr.classWeight == classWeightBalance {
			weights[class] = float64(nSamples) / float64(len(counts)*count)
		} else {
			weights[class] = 1.0
		}
	}
	return weights
}

// fitBinaryLBFGS fits the parameters with gonum's L-BFGS.
func (lr *LogisticRegression) fitBinaryLBFGS(xD *mat.Dense, yBinary, sampleWeight []float64) error {
	nSamples, nFeatures := xD.Dims()

	// Parameter vector: [w0..w_{d-1}, b] if fitIntercept else only weights
	pDim := nFeatures
	if lr.fitIntercept {
		pDim++
	}
	x0 := make([]float64, pDim)

	lambda := 0.0
	if lr.penalty == penaltyL2 {
		lambda = 1.0 / (lr.C * float64(nSamples))
	}
	invN := 1.0 / float64(nSamples)

	linear := func(theta []float64, i int) float64 {
		z := floats.Dot(theta[:nFeatures], xD.RawRowView(i))
		if lr.fitIntercept {
			z += theta[nFeatures]
		}
		return z
	}

	prob := optimize.Problem{
		Func: func(theta []float64) float64 {
			loss := 0.0
			for i := range nSamples {
				p := clampProbability(stableSigmoid(linear(theta, i)))
				loss += sampleWeight[i] * (-yBinary[i]*math.Log(p) - (1.0-yBinary[i])*math.Log(1.0-p))
			}
			loss *= invN
			if lambda > 0 {
				w := theta[:nFeatures]
				loss += regularizationHalf * lambda * floats.Dot(w, w)
			}
			return loss
		},
		Grad: func(grad, theta []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i := range nSamples {
				diff := sampleWeight[i] * (stableSigmoid(linear(theta, i)) - yBinary[i])
				floats.AddScaled(grad[:nFeatures], diff, xD.RawRowView(i))
				if lr.fitIntercept {
					grad[nFeatures] += diff
				}
			}
			floats.Scale(invN, grad)
			if lambda > 0 {
				floats.AddScaled(grad[:nFeatures], lambda, theta[:nFeatures])
			}
		},
	}

	settings := optimize.Settings{
		GradientThreshold: lr.tol,
		MajorIterations:   lr.maxIter,
	}
	result, err := optimize.Minimize(prob, x0, &settings, &optimize.LBFGS{})
	if result == nil || len(result.X) != pDim {
		return scigoErrors.NewModelError("LogisticRegression.Fit", "lbfgs optimization failed", err)
	}
	if err != nil && (math.IsNaN(result.F) || math.IsInf(result.F, 0)) {
		return scigoErrors.NewModelError("LogisticRegression.Fit", "lbfgs optimization diverged", err)
	}

	theta := result.X
	if err := scigoErrors.CheckNumericalStability("LogisticRegression.Fit", theta, result.Stats.MajorIterations); err != nil {
		return err
	}
	if err := scigoErrors.CheckScalar("LogisticRegression.Fit", result.F, result.Stats.MajorIterations); err != nil {
		return err
	}

	lr.coef_ = append([]float64(nil), theta[:nFeatures]...)
	lr.intercept_ = 0
	if lr.fitIntercept {
		lr.intercept_ = theta[nFeatures]
	}
	lr.nIter_ = result.Stats.MajorIterations
	lr.loss_ = result.F
	lr.converged_ = err == nil && result.Status != optimize.IterationLimit

	if !lr.converged_ {
		msg := "iteration limit reached; increase max_iter or scale the data"
		if err != nil {
			msg = err.Error()
		}
		scigoErrors.Warn(scigoErrors.NewConvergenceWarning(solverLBFGS, lr.nIter_, msg))
	}
	return nil
}

func (lr *LogisticRegression) checkPredictInput(method string, X mat.Matrix) error {
	if err := lr.state.RequireFitted("LogisticRegression", method); err != nil {
		return err
	}
	_, c := X.Dims()
	return lr.state.CheckFeatures("LogisticRegression."+method, c)
}

// DecisionFunction returns w·x + b for every row of X as an n x 1 matrix.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "LogisticRegression.DecisionFunction")
	if err := lr.checkPredictInput("DecisionFunction", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	coef := mat.NewVecDense(lr.nFeatures_, lr.coef_)
	scores := mat.NewVecDense(nSamples, nil)
	scores.MulVec(X, coef)
	scores.AddVec(scores, constVec(nSamples, lr.intercept_))
	return scores, nil
}

func constVec(n int, v float64) *mat.VecDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return mat.NewVecDense(n, data)
}

// Predict returns the predicted class (0 or 1) for every row of X, using a
// probability threshold of 0.5.
func (lr *LogisticRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "LogisticRegression.Predict")
	if err := lr.checkPredictInput("Predict", X); err != nil {
		return nil, err
	}

	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := range nSamples {
		if stableSigmoid(scores.At(i, 0)) > decisionThreshold {
			predictions.Set(i, 0, float64(lr.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes_[0]))
		}
	}
	return predictions, nil
}

// PredictProba returns an n x 2 matrix of [P(y=0), P(y=1)].
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (_ mat.Matrix, err error) {
	defer scigoErrors.Recover(&err, "LogisticRegression.PredictProba")
	if err := lr.checkPredictInput("PredictProba", X); err != nil {
		return nil, err
	}

	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	probas := mat.NewDense(nSamples, len(lr.classes_), nil)
	for i := range nSamples {
		p1 := stableSigmoid(scores.At(i, 0))
		probas.Set(i, 0, 1.0-p1)
		probas.Set(i, 1, p1)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := range nSamples {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// IsFitted reports whether Fit has completed.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// Coef returns a copy of the feature weights.
func (lr *LogisticRegression) Coef() []float64 {
	return append([]float64(nil), lr.coef_...)
}

// Intercept returns the bias term.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept_
}

// ClassWeights returns the per-class sample weights used in the last fit.
func (lr *LogisticRegression) ClassWeights() map[int]float64 {
	out := make(map[int]float64, len(lr.classWeights_))
	for k, v := range lr.classWeights_ {
		out[k] = v
	}
	return out
}

// NIter returns the number of L-BFGS iterations of the last fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter_
}

// Converged reports whether the last fit met the tolerance before max_iter.
func (lr *LogisticRegression) Converged() bool {
	return lr.converged_
}

// Loss returns the final value of the (1/n-scaled) objective.
func (lr *LogisticRegression) Loss() float64 {
	return lr.loss_
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"class_weight":  lr.classWeight,
		"solver":        solverLBFGS,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// String returns a scikit-learn style representation.
func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(C=%g, class_weight=%s, max_iter=%d, penalty=%s, tol=%g)",
		lr.C, lr.classWeight, lr.maxIter, lr.penalty, lr.tol)
}
