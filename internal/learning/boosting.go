package learning

import (
	"gonum.org/v1/gonum/floats"
)

// GradientBoostingRegressor fits shallow regression trees to the residuals of
// the running prediction under squared loss, starting from the target mean.
type GradientBoostingRegressor struct {
	NEstimators  int
	LearningRate float64
	MaxDepth     int
	RandomState  int64

	init  float64
	trees []*DecisionTree
}

// NewGradientBoostingRegressor creates a 100-stage, depth-3 model with learning rate 0.1
func NewGradientBoostingRegressor() *GradientBoostingRegressor {
	return &GradientBoostingRegressor{
		NEstimators:  100,
		LearningRate: 0.1,
		MaxDepth:     3,
		RandomState:  DefaultRandomState,
	}
}

// Fit runs the boosting stages
func (m *GradientBoostingRegressor) Fit(X [][]float64, y []float64) error {
	if _, err := checkRegression(X, y); err != nil {
		return err
	}
	n := len(X)
	m.init = floats.Sum(y) / float64(n)

	current := make([]float64, n)
	for i := range current {
		current[i] = m.init
	}
	residuals := make([]float64, n)

	m.trees = make([]*DecisionTree, 0, m.NEstimators)
	for stage := 0; stage < m.NEstimators; stage++ {
		floats.SubTo(residuals, y, current)

		tree := NewDecisionTreeRegressor()
		tree.MaxDepth = m.MaxDepth
		tree.RandomState = m.RandomState
		if err := tree.Fit(X, residuals); err != nil {
			return err
		}
		floats.AddScaled(current, m.LearningRate, tree.Predict(X))
		m.trees = append(m.trees, tree)
	}

	if !allFinite(current) {
		return ErrNonFiniteResult
	}
	return nil
}

// Predict sums the initial estimate and the shrunken stage predictions
func (m *GradientBoostingRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range out {
		out[i] = m.init
	}
	for _, tree := range m.trees {
		floats.AddScaled(out, m.LearningRate, tree.Predict(X))
	}
	return out
}
