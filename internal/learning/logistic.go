package learning

import (
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is multinomial (softmax) regression with an L2 penalty,
// minimising 0.5*||W||² + C*Σ cross-entropy with L-BFGS. Intercepts are not penalised.
type LogisticRegression struct {
	C             float64
	MaxIterations int
	Tolerance     float64

	weights []float64 // k rows of p weights followed by k intercepts
	classes int
	p       int
	// Converged is false when the iteration cap stopped the solver
	Converged bool
}

// NewLogisticRegression creates a model with C=1 and the given iteration cap
func NewLogisticRegression(maxIterations int) *LogisticRegression {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &LogisticRegression{C: 1, MaxIterations: maxIterations, Tolerance: 1e-4}
}

// Fit estimates weights for every class present in y
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	p, k, err := checkClassification(X, y)
	if err != nil {
		return err
	}
	if k < 2 {
		return ErrSingleClass
	}
	m.p, m.classes = p, k

	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			return m.objective(w, X, y, nil)
		},
		Grad: func(grad, w []float64) {
			m.objective(w, X, y, grad)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIterations,
		GradientThreshold: m.Tolerance,
	}

	initial := make([]float64, k*p+k)
	result, err := optimize.Minimize(problem, initial, settings, &optimize.LBFGS{})
	if result == nil {
		return err
	}
	if !allFinite(result.X) {
		return ErrNonFiniteResult
	}

	m.Converged = result.Status != optimize.IterationLimit && err == nil
	if !m.Converged {
		log.Printf("[LogisticRegression] Solver stopped before convergence after %d iterations (status %v, err %v)",
			result.Stats.MajorIterations, result.Status, err)
	}
	m.weights = result.X
	return nil
}

// objective returns the penalised loss at w and, when grad is non-nil, writes its gradient
func (m *LogisticRegression) objective(w []float64, X [][]float64, y []int, grad []float64) float64 {
	k, p := m.classes, m.p
	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	loss := 0.0
	scores := make([]float64, k)
	for i, row := range X {
		m.scoresInto(scores, w, row)
		lse := floats.LogSumExp(scores)
		loss += lse - scores[y[i]]

		if grad == nil {
			continue
		}
		for c := 0; c < k; c++ {
			diff := math.Exp(scores[c] - lse)
			if c == y[i] {
				diff -= 1
			}
			diff *= m.C
			floats.AddScaled(grad[c*p:(c+1)*p], diff, row)
			grad[k*p+c] += diff
		}
	}
	loss *= m.C

	coef := w[:k*p]
	loss += 0.5 * floats.Dot(coef, coef)
	if grad != nil {
		floats.Add(grad[:k*p], coef)
	}
	return loss
}

func (m *LogisticRegression) scoresInto(scores, w, row []float64) {
	k, p := m.classes, m.p
	for c := 0; c < k; c++ {
		scores[c] = floats.Dot(w[c*p:(c+1)*p], row) + w[k*p+c]
	}
}

// Predict returns the most probable class index for each row
func (m *LogisticRegression) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	if m.weights == nil {
		return out
	}
	scores := make([]float64, m.classes)
	for i, row := range X {
		m.scoresInto(scores, m.weights, row)
		out[i] = argmax(scores)
	}
	return out
}
