// Package model_selection provides seeded train/test partitioning.
package model_selection

import (
	"math"
	"math/rand"
	"sort"

	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
)

// Split holds the row indices of a train/test partition.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit partitions the row indices 0..n-1 by uniform sampling
// without replacement. The test partition has ceil(testSize·n) rows, as in
// scikit-learn. The same seed always yields the same partition.
//
// Both index slices are returned in ascending order so that rows keep their
// file order inside each partition.
func TrainTestSplit(n int, testSize float64, seed int64) (Split, error) {
	if n < 2 {
		return Split{}, scigoErrors.NewValueError("TrainTestSplit",
			"need at least 2 samples to split")
	}
	if !(testSize > 0 && testSize < 1) {
		return Split{}, scigoErrors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return Split{}, scigoErrors.NewValueError("TrainTestSplit",
			"test_size leaves no training samples")
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	split := Split{
		Test:  append([]int(nil), perm[:nTest]...),
		Train: append([]int(nil), perm[nTest:]...),
	}
	sort.Ints(split.Test)
	sort.Ints(split.Train)
	return split, nil
}
