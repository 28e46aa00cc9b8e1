package learning

import (
	"math/rand"
	"sort"
)

// Criterion selects the impurity measure of a tree
type Criterion string

const (
	CriterionGini         Criterion = "gini"
	CriterionSquaredError Criterion = "squared_error"
)

// DecisionTree is a CART tree over continuous features. With CriterionGini it
// stores class distributions in its leaves; with CriterionSquaredError, means.
type DecisionTree struct {
	Criterion       Criterion
	MaxDepth        int // 0 => unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features
	RandomState     int64

	root    *treeNode
	classes int
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64 // x <= threshold => left
	left      *treeNode
	right     *treeNode
	value     float64 // regression mean
	counts    []int   // classification class counts
}

// NewDecisionTreeClassifier creates a gini tree with the usual defaults
func NewDecisionTreeClassifier() *DecisionTree {
	return &DecisionTree{Criterion: CriterionGini, MinSamplesSplit: 2, MinSamplesLeaf: 1, RandomState: DefaultRandomState}
}

// NewDecisionTreeRegressor creates a squared-error tree with the usual defaults
func NewDecisionTreeRegressor() *DecisionTree {
	return &DecisionTree{Criterion: CriterionSquaredError, MinSamplesSplit: 2, MinSamplesLeaf: 1, RandomState: DefaultRandomState}
}

// treeTarget abstracts the per-criterion statistics used during growth
type treeTarget struct {
	y       []float64 // regression targets
	labels  []int     // class indices
	classes int
}

// Fit grows a regression tree
func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	if _, err := checkRegression(X, y); err != nil {
		return err
	}
	t.Criterion = CriterionSquaredError
	t.grow(X, treeTarget{y: y}, allRows(len(X)), rand.New(rand.NewSource(t.RandomState)))
	return nil
}

// FitClasses grows a classification tree over class indices
func (t *DecisionTree) FitClasses(X [][]float64, y []int) error {
	_, k, err := checkClassification(X, y)
	if err != nil {
		return err
	}
	t.Criterion = CriterionGini
	t.classes = k
	t.grow(X, treeTarget{labels: y, classes: k}, allRows(len(X)), rand.New(rand.NewSource(t.RandomState)))
	return nil
}

// fitRows grows the tree on a subset of rows (bootstrap samples may repeat rows)
func (t *DecisionTree) fitRows(X [][]float64, target treeTarget, rows []int, rng *rand.Rand) {
	t.classes = target.classes
	t.grow(X, target, rows, rng)
}

func (t *DecisionTree) grow(X [][]float64, target treeTarget, rows []int, rng *rand.Rand) {
	p := 0
	if len(X) > 0 {
		p = len(X[0])
	}
	t.root = t.buildNode(X, target, rows, 0, p, rng)
}

func (t *DecisionTree) buildNode(X [][]float64, target treeTarget, rows []int, depth, p int, rng *rand.Rand) *treeNode {
	node := t.makeLeaf(target, rows)

	if len(rows) < max(t.MinSamplesSplit, 2) || (t.MaxDepth > 0 && depth >= t.MaxDepth) || isPureNode(node) {
		return node
	}

	features := candidateFeatures(p, t.MaxFeatures, rng)
	best := splitCandidate{feature: -1}
	parent := t.impurity(target, rows)
	for _, f := range features {
		candidate := t.bestSplit(X, target, rows, f, parent)
		if candidate.feature >= 0 && candidate.gain > best.gain {
			best = candidate
		}
	}
	if best.feature < 0 || best.gain <= 1e-12 {
		return node
	}

	left := make([]int, 0, best.leftCount)
	right := make([]int, 0, len(rows)-best.leftCount)
	for _, r := range rows {
		if X[r][best.feature] <= best.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	node.leaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.buildNode(X, target, left, depth+1, p, rng)
	node.right = t.buildNode(X, target, right, depth+1, p, rng)
	return node
}

type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
	leftCount int
}

// bestSplit sweeps the sorted values of feature f, scoring every threshold
// between distinct adjacent values.
func (t *DecisionTree) bestSplit(X [][]float64, target treeTarget, rows []int, f int, parent float64) splitCandidate {
	best := splitCandidate{feature: -1}
	n := len(rows)
	sorted := append([]int(nil), rows...)
	sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

	minLeaf := max(t.MinSamplesLeaf, 1)
	classification := target.labels != nil

	var leftCounts, rightCounts []int
	var leftSum, leftSq, rightSum, rightSq float64
	if classification {
		leftCounts = make([]int, target.classes)
		rightCounts = make([]int, target.classes)
		for _, r := range sorted {
			rightCounts[target.labels[r]]++
		}
	} else {
		for _, r := range sorted {
			v := target.y[r]
			rightSum += v
			rightSq += v * v
		}
	}

	for i := 0; i < n-1; i++ {
		r := sorted[i]
		if classification {
			leftCounts[target.labels[r]]++
			rightCounts[target.labels[r]]--
		} else {
			v := target.y[r]
			leftSum += v
			leftSq += v * v
			rightSum -= v
			rightSq -= v * v
		}

		nLeft, nRight := i+1, n-i-1
		if nLeft < minLeaf || nRight < minLeaf {
			continue
		}
		lo, hi := X[r][f], X[sorted[i+1]][f]
		if lo == hi {
			continue
		}

		var child float64
		if classification {
			child = (float64(nLeft)*gini(leftCounts, nLeft) + float64(nRight)*gini(rightCounts, nRight)) / float64(n)
		} else {
			child = (sse(leftSum, leftSq, nLeft) + sse(rightSum, rightSq, nRight)) / float64(n)
		}
		if gain := parent - child; gain > best.gain {
			threshold := lo + (hi-lo)/2
			if threshold >= hi {
				threshold = lo
			}
			best = splitCandidate{feature: f, threshold: threshold, gain: gain, leftCount: nLeft}
		}
	}
	return best
}

func (t *DecisionTree) impurity(target treeTarget, rows []int) float64 {
	if target.labels != nil {
		counts := make([]int, target.classes)
		for _, r := range rows {
			counts[target.labels[r]]++
		}
		return gini(counts, len(rows))
	}
	sum, sq := 0.0, 0.0
	for _, r := range rows {
		sum += target.y[r]
		sq += target.y[r] * target.y[r]
	}
	return sse(sum, sq, len(rows)) / float64(len(rows))
}

func (t *DecisionTree) makeLeaf(target treeTarget, rows []int) *treeNode {
	node := &treeNode{leaf: true}
	if target.labels != nil {
		node.counts = make([]int, target.classes)
		for _, r := range rows {
			node.counts[target.labels[r]]++
		}
		return node
	}
	sum := 0.0
	for _, r := range rows {
		sum += target.y[r]
	}
	if len(rows) > 0 {
		node.value = sum / float64(len(rows))
	}
	return node
}

func (t *DecisionTree) leafFor(row []float64) *treeNode {
	node := t.root
	for node != nil && !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

// Predict returns leaf means for a regression tree
func (t *DecisionTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		if leaf := t.leafFor(row); leaf != nil {
			out[i] = leaf.value
		}
	}
	return out
}

// PredictClasses returns the majority class of the leaf each row falls in
func (t *DecisionTree) PredictClasses(X [][]float64) []int {
	out := make([]int, len(X))
	for i, row := range X {
		if leaf := t.leafFor(row); leaf != nil && leaf.counts != nil {
			out[i] = argmaxInt(leaf.counts)
		}
	}
	return out
}

// DecisionTreeClassifier adapts a gini tree to the Classifier interface
type DecisionTreeClassifier struct {
	*DecisionTree
}

func (c DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	return c.FitClasses(X, y)
}

func (c DecisionTreeClassifier) Predict(X [][]float64) []int {
	return c.PredictClasses(X)
}

func isPureNode(node *treeNode) bool {
	if node.counts == nil {
		return false
	}
	nonZero := 0
	for _, c := range node.counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

// sse is the within-node sum of squared deviations
func sse(sum, sq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	v := sq - sum*sum/float64(n)
	if v < 0 {
		return 0
	}
	return v
}

// candidateFeatures returns all feature indices, or k of them sampled without replacement
func candidateFeatures(p, k int, rng *rand.Rand) []int {
	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if k <= 0 || k >= p {
		return features
	}
	rng.Shuffle(p, func(i, j int) { features[i], features[j] = features[j], features[i] })
	return features[:k]
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
