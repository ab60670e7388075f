// Package pipeline chains column-wise transformers and an optional final
// estimator so that training statistics are learned once and replayed on
// held-out rows.
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/core/model"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
)

// Step is a named pipeline stage. Estimator is a model.Transformer for every
// step but the last, which may also be a model.Predictor.
type Step struct {
	Name      string
	Estimator interface{}
}

// Pipeline chains transformers and optionally a final estimator.
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps      []Step
	namedSteps map[string]interface{}
}

// New creates a Pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	named := make(map[string]interface{}, len(steps))
	for _, step := range steps {
		named[step.Name] = step.Estimator
	}
	return &Pipeline{
		state:      model.NewStateManager(),
		logger:     log.GetLoggerWithName("Pipeline"),
		steps:      steps,
		namedSteps: named,
	}
}

// Make builds a pipeline with generated step names (step1, step2, ...).
func Make(estimators ...interface{}) *Pipeline {
	steps := make([]Step, len(estimators))
	for i, estimator := range estimators {
		steps[i] = Step{Name: fmt.Sprintf("step%d", i+1), Estimator: estimator}
	}
	return New(steps...)
}

// Fit fits every transformer in order on the output of the previous one, then
// fits the final step. A transformer final step ignores y.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	if len(p.steps) == 0 {
		return errors.New("pipeline has no steps")
	}
	Xt, err := p.fitTransformers(X, len(p.steps)-1)
	if err != nil {
		return err
	}

	final := p.steps[len(p.steps)-1]
	switch est := final.Estimator.(type) {
	case model.Predictor:
		if err := est.Fit(Xt, y); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit final step '%s'", final.Name))
		}
	case model.Transformer:
		if err := est.Fit(Xt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to fit final step '%s'", final.Name))
		}
	default:
		return errors.NewValidationError("pipeline final step", "final step must have Fit method", final.Name)
	}

	p.state.SetFitted()
	return nil
}

// FitTransform fits every step on X and returns the transformed training
// matrix. All steps must be transformers.
func (p *Pipeline) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	Xt, err := p.fitTransformers(X, len(p.steps))
	if err != nil {
		return nil, err
	}
	p.state.SetFitted()
	p.logger.Debug("Pipeline fitted", log.OperationKey, log.OperationFitTransform, log.SamplesKey, rowsOf(Xt))
	return Xt, nil
}

// Transform replays every fitted step on X. All steps must be transformers.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("Pipeline", "Transform"); err != nil {
		return nil, err
	}
	return p.transform(X, len(p.steps))
}

// Predict transforms X through the intermediate steps and predicts with the
// final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	pred, Xt, err := p.final("Predict", X)
	if err != nil {
		return nil, err
	}
	return pred.Predict(Xt)
}

// PredictProba is Predict for class probabilities.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	pred, Xt, err := p.final("PredictProba", X)
	if err != nil {
		return nil, err
	}
	clf, ok := pred.(model.Classifier)
	if !ok {
		return nil, errors.NewValidationError("pipeline final step", "final step must have PredictProba method", p.steps[len(p.steps)-1].Name)
	}
	return clf.PredictProba(Xt)
}

// Score returns the score of the final estimator on transformed X.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	pred, Xt, err := p.final("Score", X)
	if err != nil {
		return 0, err
	}
	scorer, ok := pred.(interface {
		Score(mat.Matrix, mat.Matrix) (float64, error)
	})
	if !ok {
		return 0, errors.NewValidationError("pipeline final step", "final step must have Score method", p.steps[len(p.steps)-1].Name)
	}
	return scorer.Score(Xt, y)
}

// GetParams returns the parameters of every step, prefixed with the step name.
func (p *Pipeline) GetParams() map[string]interface{} {
	params := map[string]interface{}{"steps": p.Steps()}
	for _, step := range p.steps {
		getter, ok := step.Estimator.(interface {
			GetParams() map[string]interface{}
		})
		if !ok {
			continue
		}
		for key, value := range getter.GetParams() {
			params[step.Name+"__"+key] = value
		}
	}
	return params
}

// NamedSteps returns the steps keyed by name.
func (p *Pipeline) NamedSteps() map[string]interface{} {
	out := make(map[string]interface{}, len(p.namedSteps))
	for k, v := range p.namedSteps {
		out[k] = v
	}
	return out
}

// Steps returns a copy of the step list.
func (p *Pipeline) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// IsFitted reports whether Fit or FitTransform has completed.
func (p *Pipeline) IsFitted() bool {
	return p.state.IsFitted()
}

func (p *Pipeline) fitTransformers(X mat.Matrix, upto int) (mat.Matrix, error) {
	Xt := X
	for i := 0; i < upto; i++ {
		step := p.steps[i]
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError("pipeline step", "intermediate steps must be transformers", step.Name)
		}
		var err error
		Xt, err = transformer.FitTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
	}
	return Xt, nil
}

func (p *Pipeline) transform(X mat.Matrix, upto int) (mat.Matrix, error) {
	Xt := X
	for i := 0; i < upto; i++ {
		step := p.steps[i]
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError("pipeline step", "intermediate steps must be transformers", step.Name)
		}
		var err error
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

func (p *Pipeline) final(method string, X mat.Matrix) (model.Predictor, mat.Matrix, error) {
	if err := p.state.RequireFitted("Pipeline", method); err != nil {
		return nil, nil, err
	}
	last := p.steps[len(p.steps)-1]
	pred, ok := last.Estimator.(model.Predictor)
	if !ok {
		return nil, nil, errors.NewValidationError("pipeline final step", "final step must be a predictor for "+method, last.Name)
	}
	Xt, err := p.transform(X, len(p.steps)-1)
	if err != nil {
		return nil, nil, err
	}
	return pred, Xt, nil
}

func rowsOf(m mat.Matrix) int {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()
	return r
}
