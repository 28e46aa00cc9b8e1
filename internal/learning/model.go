// Package learning holds the estimators the training pipeline fits. Features
// are dense row-major [][]float64; class labels are indices 0..k-1.
package learning

import (
	"errors"
	"fmt"
	"math"
)

// DefaultRandomState seeds every randomised estimator
const DefaultRandomState int64 = 42

// DefaultMaxIterations caps iterative solvers when no limit is configured
const DefaultMaxIterations = 1000

// Regressor is a supervised model with real-valued targets
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Classifier is a supervised model over class indices
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
}

var (
	ErrEmptyInput       = errors.New("empty input")
	ErrShapeMismatch    = errors.New("X and y length mismatch")
	ErrNonFiniteInput   = errors.New("input contains NaN or infinity")
	ErrNotFitted        = errors.New("model is not fitted")
	ErrSingleClass      = errors.New("target needs samples of at least 2 classes")
	ErrNonFiniteResult  = errors.New("solver produced non-finite parameters")
	ErrInconsistentRows = errors.New("inconsistent number of features in X rows")
)

// checkX validates that X is non-empty, rectangular and finite; it returns the feature count
func checkX(X [][]float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyInput
	}
	p := len(X[0])
	for i, row := range X {
		if len(row) != p {
			return 0, ErrInconsistentRows
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w at row %d, feature %d", ErrNonFiniteInput, i, j)
			}
		}
	}
	return p, nil
}

func checkRegression(X [][]float64, y []float64) (int, error) {
	p, err := checkX(X)
	if err != nil {
		return 0, err
	}
	if len(y) != len(X) {
		return 0, ErrShapeMismatch
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w in target at row %d", ErrNonFiniteInput, i)
		}
	}
	return p, nil
}

// checkClassification returns the feature count and the number of classes (max label + 1)
func checkClassification(X [][]float64, y []int) (int, int, error) {
	p, err := checkX(X)
	if err != nil {
		return 0, 0, err
	}
	if len(y) != len(X) {
		return 0, 0, ErrShapeMismatch
	}
	k := 0
	for _, label := range y {
		if label < 0 {
			return 0, 0, fmt.Errorf("negative class index %d", label)
		}
		k = max(k, label+1)
	}
	return p, k, nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func argmaxInt(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
