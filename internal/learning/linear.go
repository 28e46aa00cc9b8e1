package learning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares with an intercept.
// Rank-deficient designs are solved in the minimum-norm least-squares sense.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
	fitted    bool
}

// NewLinearRegression creates an unfitted model
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit centres X and y, solves the centred system through an SVD and recovers the intercept
func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	p, err := checkRegression(X, y)
	if err != nil {
		return err
	}
	n := len(X)

	xMean := make([]float64, p)
	for _, row := range X {
		floats.Add(xMean, row)
	}
	floats.Scale(1/float64(n), xMean)
	yMean := floats.Sum(y) / float64(n)

	coef := make([]float64, p)
	if p > 0 {
		a := mat.NewDense(n, p, nil)
		b := mat.NewDense(n, 1, nil)
		for i, row := range X {
			for j, v := range row {
				a.Set(i, j, v-xMean[j])
			}
			b.Set(i, 0, y[i]-yMean)
		}

		var svd mat.SVD
		if !svd.Factorize(a, mat.SVDThin) {
			return fmt.Errorf("linear regression: SVD did not converge")
		}
		values := svd.Values(nil)
		rcond := 2.220446049250313e-16 * float64(max(n, p))
		if rank := svd.Rank(rcond); rank > 0 && values[0] > 0 {
			var solution mat.Dense
			svd.SolveTo(&solution, b, rank)
			for j := range coef {
				coef[j] = solution.At(j, 0)
			}
		}
	}

	intercept := yMean - floats.Dot(coef, xMean)
	if !allFinite(coef) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return ErrNonFiniteResult
	}

	m.Coef = coef
	m.Intercept = intercept
	m.fitted = true
	return nil
}

// Predict returns X·coef + intercept
func (m *LinearRegression) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = floats.Dot(m.Coef, row) + m.Intercept
	}
	return out
}
