// Package metrics provides evaluation metrics for binary classifiers and the
// correlation matrix used during feature analysis.
//
// Classification metrics:
//   - Accuracy, ClassificationError
//   - PrecisionRecallFScore: per-class precision, recall, F1 and support
//   - ClassificationReport: the above in the familiar text layout
//   - ConfusionMatrix
//   - AUC and BinaryLogLoss over predicted probabilities
//
// Labels are 0/1 values held in *mat.VecDense. Metrics that are undefined
// for the given input (no predicted positives, a single class) evaluate to
// 0 and raise an UndefinedMetricWarning through errors.Warn.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
)

// checkPair validates two label/score vectors of equal, non-zero length.
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, scigoErrors.NewValueError(op, "input vectors cannot be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, scigoErrors.NewValueError(op, "input vectors cannot be empty")
	}
	if n != yPred.Len() {
		return 0, scigoErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

func checkBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		if v != 0 && v != 1 {
			return scigoErrors.NewValidationError(
				op+" labels",
				fmt.Sprintf("must contain only binary values (0 or 1), found %g at index %d", v, i),
				v,
			)
		}
	}
	return nil
}

// ConfusionMatrix counts predictions for binary labels. Rows are the true
// class, columns the predicted class:
//
//	[[TN FP]
//	 [FN TP]]
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	if err := checkBinary("ConfusionMatrix", yTrue); err != nil {
		return nil, err
	}
	if err := checkBinary("ConfusionMatrix", yPred); err != nil {
		return nil, err
	}
	cm := mat.NewDense(2, 2, nil)
	for i := 0; i < n; i++ {
		r, c := int(yTrue.AtVec(i)), int(yPred.AtVec(i))
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, nil
}

// ClassScores holds the per-class metrics of a binary classifier. Index 0 is
// the negative class, index 1 the positive class.
type ClassScores struct {
	Precision [2]float64
	Recall    [2]float64
	F1        [2]float64
	Support   [2]int
}

// PrecisionRecallFScore computes per-class precision, recall, F1 and
// support. An undefined ratio is reported as 0 with an UndefinedMetricWarning.
func PrecisionRecallFScore(yTrue, yPred *mat.VecDense) (ClassScores, error) {
	var s ClassScores
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return s, err
	}
	for c := 0; c < 2; c++ {
		tp := cm.At(c, c)
		predicted := cm.At(0, c) + cm.At(1, c)
		actual := cm.At(c, 0) + cm.At(c, 1)

		s.Support[c] = int(actual)
		s.Precision[c] = ratio("precision", c, tp, predicted, "no predicted samples")
		s.Recall[c] = ratio("recall", c, tp, actual, "no true samples")
		if p, r := s.Precision[c], s.Recall[c]; p+r > 0 {
			s.F1[c] = 2 * p * r / (p + r)
		}
	}
	return s, nil
}

func ratio(metric string, class int, num, den float64, condition string) float64 {
	if den == 0 {
		scigoErrors.Warn(scigoErrors.NewUndefinedMetricWarning(
			fmt.Sprintf("%s[class=%d]", metric, class), condition, 0))
		return 0
	}
	return num / den
}

// AUC computes the area under the ROC curve from binary labels and scores.
// Tied scores contribute a diagonal segment (trapezoid rule). With a single
// class present the value is undefined; 0.5 is returned with a warning.
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	order := make([]int, n)
	var pos, neg float64
	for i := range order {
		order[i] = i
		if yTrue.AtVec(i) == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		scigoErrors.Warn(scigoErrors.NewUndefinedMetricWarning("roc_auc", "only one class present in y_true", 0.5))
		return 0.5, nil
	}
	sort.SliceStable(order, func(a, b int) bool {
		return yScore.AtVec(order[a]) > yScore.AtVec(order[b])
	})

	var auc, tp, fp, prevTPR, prevFPR float64
	for k, i := range order {
		if yTrue.AtVec(i) == 1 {
			tp++
		} else {
			fp++
		}
		// close a segment only where the score changes
		if k+1 < n && yScore.AtVec(order[k+1]) == yScore.AtVec(i) {
			continue
		}
		tpr, fpr := tp/pos, fp/neg
		auc += (fpr - prevFPR) * (tpr + prevTPR) / 2
		prevTPR, prevFPR = tpr, fpr
	}
	return auc, nil
}

// AUCMatrix is AUC over the first column of yTrue and the last column of
// yScore, so an n x 2 PredictProba result can be passed directly.
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	if yTrue == nil || yScore == nil {
		return 0, scigoErrors.NewValueError("AUCMatrix", "input matrices cannot be nil")
	}
	_, c := yScore.Dims()
	return AUC(Column(yTrue, 0), Column(yScore, c-1))
}

// BinaryLogLoss is the mean binary cross-entropy of probabilities yProb
// against 0/1 labels. Probabilities are clipped to [1e-15, 1-1e-15].
func BinaryLogLoss(yTrue, yProb *mat.VecDense) (float64, error) {
	n, err := checkPair("BinaryLogLoss", yTrue, yProb)
	if err != nil {
		return 0, err
	}
	if err := checkBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	const eps = 1e-15
	loss := 0.0
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yProb.AtVec(i), eps), 1-eps)
		if yTrue.AtVec(i) == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log1p(-p)
		}
	}
	return loss / float64(n), nil
}

// ClassificationError returns the fraction of mismatched labels.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ClassificationError", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	wrong := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			wrong++
		}
	}
	return float64(wrong) / float64(n), nil
}

// Accuracy returns the fraction of matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	e, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - e, nil
}

// Column returns column j of m as a vector, or nil when m has no rows.
// Predict results are n x 1 and PredictProba results n x 2; both feed the
// vector metrics through Column.
func Column(m mat.Matrix, j int) *mat.VecDense {
	r, _ := m.Dims()
	if r == 0 {
		return nil
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, j))
	}
	return v
}
