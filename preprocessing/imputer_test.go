package preprocessing_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/preprocessing"
)

func TestSimpleImputer_MeanUsesTrainOnly(t *testing.T) {
	nan := math.NaN()
	train := mat.NewDense(4, 2, []float64{
		1, 10,
		nan, 20,
		3, nan,
		5, 30,
	})
	test := mat.NewDense(2, 2, []float64{
		nan, nan,
		100, 200,
	})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	trainFilled, err := imputer.FitTransform(train)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if math.Abs(imputer.Statistics[0]-3) > epsilon || math.Abs(imputer.Statistics[1]-20) > epsilon {
		t.Fatalf("unexpected statistics %v", imputer.Statistics)
	}
	if trainFilled.At(1, 0) != 3 || trainFilled.At(2, 1) != 20 {
		t.Errorf("train not filled with train means: %v", mat.Formatted(trainFilled))
	}

	testFilled, err := imputer.Transform(test)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if testFilled.At(0, 0) != 3 || testFilled.At(0, 1) != 20 {
		t.Errorf("test must use train means, got %v", mat.Formatted(testFilled))
	}
	if testFilled.At(1, 0) != 100 {
		t.Errorf("observed values must be kept, got %v", testFilled.At(1, 0))
	}
	if !math.IsNaN(test.At(0, 0)) {
		t.Error("input matrix was modified")
	}
}

func TestSimpleImputer_Median(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, math.NaN(), 10, 4})
	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)
	if err := imputer.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if imputer.Statistics[0] != 3 {
		t.Errorf("expected median 3, got %v", imputer.Statistics[0])
	}
}

func TestSimpleImputer_AllMissingColumn(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, math.NaN(), 2, math.NaN()})
	imputer := preprocessing.NewSimpleImputer("")
	imputer.FeatureNames = []string{"tenure", "totalcharges"}

	err := imputer.Fit(X)
	if err == nil {
		t.Fatal("expected error for all-missing column")
	}
	var valErr *scigoErrors.ValueError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValueError, got %T", err)
	}
	if valErr.Message != "column totalcharges has no observed values" {
		t.Errorf("unexpected message %q", valErr.Message)
	}
}

func TestSimpleImputer_Unfitted(t *testing.T) {
	_, err := preprocessing.NewSimpleImputer("mean").Transform(mat.NewDense(1, 1, nil))
	if err == nil {
		t.Error("expected NotFittedError")
	}
}
