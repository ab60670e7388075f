package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Report is a binary classification report.
type Report struct {
	TargetNames [2]string
	Scores      ClassScores
	Accuracy    float64

	MacroPrecision, MacroRecall, MacroF1          float64
	WeightedPrecision, WeightedRecall, WeightedF1 float64

	Digits int
}

// ClassificationReport builds a Report from true and predicted 0/1 labels.
// targetNames labels the negative and positive class; nil uses "0" and "1".
func ClassificationReport(yTrue, yPred *mat.VecDense, targetNames []string) (*Report, error) {
	scores, err := PrecisionRecallFScore(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	r := &Report{TargetNames: [2]string{"0", "1"}, Scores: scores, Accuracy: acc, Digits: 2}
	if len(targetNames) == 2 {
		r.TargetNames = [2]string{targetNames[0], targetNames[1]}
	}

	total := float64(scores.Support[0] + scores.Support[1])
	for c := 0; c < 2; c++ {
		w := float64(scores.Support[c]) / total
		r.MacroPrecision += scores.Precision[c] / 2
		r.MacroRecall += scores.Recall[c] / 2
		r.MacroF1 += scores.F1[c] / 2
		r.WeightedPrecision += scores.Precision[c] * w
		r.WeightedRecall += scores.Recall[c] * w
		r.WeightedF1 += scores.F1[c] * w
	}
	return r, nil
}

// String renders the report in the scikit-learn text layout.
func (r *Report) String() string {
	const avgLabel = "weighted avg"
	width := len(avgLabel)
	for _, name := range r.TargetNames {
		if len(name) > width {
			width = len(name)
		}
	}
	digits := r.Digits
	if digits < 0 {
		digits = 2
	}
	support := r.Scores.Support[0] + r.Scores.Support[1]

	var b strings.Builder
	fmt.Fprintf(&b, "%*s ", width, "")
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		fmt.Fprintf(&b, " %9s", h)
	}
	b.WriteString("\n\n")

	row := func(name string, p, rec, f float64, n int) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, name, digits, p, digits, rec, digits, f, n)
	}
	for c := 0; c < 2; c++ {
		row(r.TargetNames[c], r.Scores.Precision[c], r.Scores.Recall[c], r.Scores.F1[c], r.Scores.Support[c])
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", digits, r.Accuracy, support)
	row("macro avg", r.MacroPrecision, r.MacroRecall, r.MacroF1, support)
	row(avgLabel, r.WeightedPrecision, r.WeightedRecall, r.WeightedF1, support)
	return b.String()
}
