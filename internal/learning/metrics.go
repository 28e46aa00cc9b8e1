package learning

import (
	"gonum.org/v1/gonum/stat"
)

// Accuracy is the fraction of predictions equal to the truth
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// R2 is the coefficient of determination. A constant truth scores 1 when
// predicted exactly and 0 otherwise.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	mean := stat.Mean(yTrue, nil)
	ssTot, ssRes := 0.0, 0.0
	for i, v := range yTrue {
		ssTot += (v - mean) * (v - mean)
		ssRes += (v - yPred[i]) * (v - yPred[i])
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(yPred, yTrue, nil)
}
