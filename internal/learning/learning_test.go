package learning

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns three well separated clusters in two dimensions
func blobs(perClass int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	centers := [][]float64{{0, 0}, {6, 6}, {0, 8}}
	var X [][]float64
	var y []int
	for c, center := range centers {
		for i := 0; i < perClass; i++ {
			X = append(X, []float64{center[0] + rng.NormFloat64()*0.5, center[1] + rng.NormFloat64()*0.5})
			y = append(y, c)
		}
	}
	return X, y
}

// linearData returns y = 3 + 2*x0 - x1 with optional noise
func linearData(n int, noise float64, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{rng.Float64() * 10, rng.Float64() * 5}
		y[i] = 3 + 2*X[i][0] - X[i][1] + rng.NormFloat64()*noise
	}
	return X, y
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.75, Accuracy([]int{0, 1, 1, 2}, []int{0, 1, 0, 2}))
	assert.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestR2(t *testing.T) {
	assert.InDelta(t, 1.0, R2([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 0.0, R2([]float64{1, 2, 3}, []float64{2, 2, 2}), 1e-12)
	assert.Equal(t, 1.0, R2([]float64{4, 4}, []float64{4, 4}))
	assert.Equal(t, 0.0, R2([]float64{4, 4}, []float64{4, 5}))
	assert.Less(t, R2([]float64{1, 2, 3}, []float64{3, 2, 1}), 0.0)
}

func TestLinearRegressionRecoversCoefficients(t *testing.T) {
	X, y := linearData(50, 0, 1)

	model := NewLinearRegression()
	require.NoError(t, model.Fit(X, y))

	assert.InDelta(t, 2.0, model.Coef[0], 1e-8)
	assert.InDelta(t, -1.0, model.Coef[1], 1e-8)
	assert.InDelta(t, 3.0, model.Intercept, 1e-8)
	assert.InDelta(t, 1.0, R2(y, model.Predict(X)), 1e-10)
}

func TestLinearRegressionRankDeficient(t *testing.T) {
	X := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	y := []float64{2, 4, 6, 8}

	model := NewLinearRegression()
	require.NoError(t, model.Fit(X, y))
	assert.InDelta(t, 1.0, R2(y, model.Predict(X)), 1e-9)
}

func TestLinearRegressionConstantFeature(t *testing.T) {
	X := [][]float64{{5}, {5}, {5}}
	y := []float64{1, 2, 3}

	model := NewLinearRegression()
	require.NoError(t, model.Fit(X, y))
	assert.Equal(t, []float64{2, 2, 2}, model.Predict(X))
}

func TestInputValidation(t *testing.T) {
	nan := math.NaN()

	assert.ErrorIs(t, NewLinearRegression().Fit(nil, nil), ErrEmptyInput)
	assert.ErrorIs(t, NewLinearRegression().Fit([][]float64{{1}, {nan}}, []float64{1, 2}), ErrNonFiniteInput)
	assert.ErrorIs(t, NewLinearRegression().Fit([][]float64{{1}, {2}}, []float64{1}), ErrShapeMismatch)
	assert.ErrorIs(t, NewLinearRegression().Fit([][]float64{{1}, {2, 3}}, []float64{1, 2}), ErrInconsistentRows)
	assert.ErrorIs(t, NewGradientBoostingRegressor().Fit([][]float64{{1}, {2}}, []float64{1, nan}), ErrNonFiniteInput)
	assert.ErrorIs(t, NewLogisticRegression(100).Fit([][]float64{{1}, {2}}, []int{0, 0}), ErrSingleClass)
	assert.ErrorIs(t, NewSVC(100).Fit([][]float64{{1}, {2}}, []int{1, 1}), ErrSingleClass)
}

func TestLogisticRegressionSeparatesClusters(t *testing.T) {
	X, y := blobs(30, 2)

	model := NewLogisticRegression(DefaultMaxIterations)
	require.NoError(t, model.Fit(X, y))
	assert.GreaterOrEqual(t, Accuracy(y, model.Predict(X)), 0.95)
}

func TestLogisticRegressionIterationCapIsNotAnError(t *testing.T) {
	X, y := blobs(20, 3)

	model := NewLogisticRegression(1)
	err := model.Fit(X, y)
	require.NoError(t, err)
	assert.Len(t, model.Predict(X), len(X))
}

func TestDecisionTreeClassifierFitsTrainingData(t *testing.T) {
	X, y := blobs(20, 4)

	tree := DecisionTreeClassifier{NewDecisionTreeClassifier()}
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 1.0, Accuracy(y, tree.Predict(X)))
}

func TestDecisionTreeRegressorDepthLimit(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{1, 1, 5, 5}

	tree := NewDecisionTreeRegressor()
	tree.MaxDepth = 1
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []float64{1, 1, 5, 5}, tree.Predict(X))
	assert.Equal(t, 2.5, tree.root.threshold)
}

func TestRandomForestClassifier(t *testing.T) {
	X, y := blobs(25, 5)

	forest := NewRandomForestClassifier()
	require.NoError(t, forest.Fit(X, y))
	assert.Len(t, forest.Trees, 100)
	assert.GreaterOrEqual(t, Accuracy(y, forest.Predict(X)), 0.95)

	again := NewRandomForestClassifier()
	require.NoError(t, again.Fit(X, y))
	assert.Equal(t, forest.Predict(X), again.Predict(X), "fixed seed makes fits reproducible")
}

func TestRandomForestRegressor(t *testing.T) {
	X, y := linearData(80, 0.1, 6)

	forest := NewRandomForestRegressor()
	require.NoError(t, forest.Fit(X, y))
	assert.Greater(t, R2(y, forest.Predict(X)), 0.9)
}

func TestGradientBoostingRegressor(t *testing.T) {
	X, y := linearData(80, 0.1, 7)

	model := NewGradientBoostingRegressor()
	require.NoError(t, model.Fit(X, y))
	assert.Greater(t, R2(y, model.Predict(X)), 0.95)
}

func TestSVCBinaryAndMulticlass(t *testing.T) {
	X, y := blobs(20, 8)

	model := NewSVC(DefaultMaxIterations)
	require.NoError(t, model.Fit(X, y))
	assert.Len(t, model.pairs, 3, "one machine per class pair")
	assert.GreaterOrEqual(t, Accuracy(y, model.Predict(X)), 0.95)

	var binX [][]float64
	var binY []int
	for i := range X {
		if y[i] < 2 {
			binX = append(binX, X[i])
			binY = append(binY, y[i])
		}
	}
	binary := NewSVC(DefaultMaxIterations)
	require.NoError(t, binary.Fit(binX, binY))
	assert.Equal(t, 1.0, Accuracy(binY, binary.Predict(binX)))
}

func TestScaleGamma(t *testing.T) {
	assert.Equal(t, 1.0, scaleGamma([][]float64{{2, 2}, {2, 2}}, 2))
	// entries 0,2,0,2: population variance 1
	assert.InDelta(t, 0.5, scaleGamma([][]float64{{0, 2}, {0, 2}}, 2), 1e-12)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNonFiniteInput, ErrNonFiniteResult))
}
