package learning

import (
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of CART trees. Each tree sees a bootstrap
// sample and its own seed derived from RandomState, so fits are reproducible.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 => all features
	Bootstrap       bool
	RandomState     int64

	Trees   []*DecisionTree
	classes int
}

// RandomForestClassifier votes with gini trees using √p features per split
type RandomForestClassifier struct {
	RandomForest
}

// RandomForestRegressor averages squared-error trees using every feature per split
type RandomForestRegressor struct {
	RandomForest
}

func newRandomForest() RandomForest {
	return RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		RandomState:     DefaultRandomState,
	}
}

// NewRandomForestClassifier creates a 100-tree classifier with the fixed seed
func NewRandomForestClassifier() *RandomForestClassifier {
	return &RandomForestClassifier{RandomForest: newRandomForest()}
}

// NewRandomForestRegressor creates a 100-tree regressor with the fixed seed
func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{RandomForest: newRandomForest()}
}

// Fit trains the classification forest
func (rf *RandomForestClassifier) Fit(X [][]float64, y []int) error {
	p, k, err := checkClassification(X, y)
	if err != nil {
		return err
	}
	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(p))))
	}
	rf.classes = k
	rf.fit(X, treeTarget{labels: y, classes: k}, CriterionGini, maxFeatures)
	return nil
}

// Predict returns the majority vote of the trees; ties go to the lower class index
func (rf *RandomForestClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	votes := make([]int, max(rf.classes, 1))
	for i, row := range X {
		for c := range votes {
			votes[c] = 0
		}
		for _, tree := range rf.Trees {
			if leaf := tree.leafFor(row); leaf != nil && leaf.counts != nil {
				votes[argmaxInt(leaf.counts)]++
			}
		}
		out[i] = argmaxInt(votes)
	}
	return out
}

// Fit trains the regression forest
func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	if _, err := checkRegression(X, y); err != nil {
		return err
	}
	rf.fit(X, treeTarget{y: y}, CriterionSquaredError, rf.MaxFeatures)
	return nil
}

// Predict returns the mean of the tree predictions
func (rf *RandomForestRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(rf.Trees) == 0 {
		return out
	}
	for _, tree := range rf.Trees {
		for i, v := range tree.Predict(X) {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.Trees))
	}
	return out
}

func (rf *RandomForest) fit(X [][]float64, target treeTarget, criterion Criterion, maxFeatures int) {
	n := len(X)
	rf.Trees = make([]*DecisionTree, rf.NEstimators)
	for t := 0; t < rf.NEstimators; t++ {
		treeRand := rand.New(rand.NewSource(rf.RandomState + int64(t)))

		sample := make([]int, n)
		for j := range sample {
			if rf.Bootstrap {
				sample[j] = treeRand.Intn(n)
			} else {
				sample[j] = j
			}
		}

		tree := &DecisionTree{
			Criterion:       criterion,
			MaxDepth:        rf.MaxDepth,
			MinSamplesSplit: rf.MinSamplesSplit,
			MinSamplesLeaf:  1,
			MaxFeatures:     maxFeatures,
			RandomState:     rf.RandomState + int64(t),
		}
		tree.fitRows(X, target, sample, treeRand)
		rf.Trees[t] = tree
	}
}
