// Package training selects an estimator for a request and fits and scores it
// on a partitioned table.
package training

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/domain/training"
	"tabml/internal/learning"
)

// Trainer fits the selected estimator on the train rows and scores it on the eval rows
type Trainer struct {
	maxIterations int
}

// NewTrainer creates a trainer; maxIterations caps the iterative solvers
func NewTrainer(maxIterations int) *Trainer {
	if maxIterations <= 0 {
		maxIterations = learning.DefaultMaxIterations
	}
	return &Trainer{maxIterations: maxIterations}
}

// Assemble fills the feature matrices and target sequences of partition from table
func Assemble(table *dataset.Table, target string, features []string, partition *training.Partition) error {
	targetCol := table.Column(target)
	if targetCol == nil {
		return core.NewColumnNotFoundError(target)
	}
	featureCols := make([]*dataset.Column, len(features))
	var missing []string
	for j, name := range features {
		if featureCols[j] = table.Column(name); featureCols[j] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return core.NewColumnNotFoundError(missing...)
	}

	build := func(rows []int) ([][]float64, []dataset.Value) {
		X := make([][]float64, len(rows))
		y := make([]dataset.Value, len(rows))
		for i, r := range rows {
			X[i] = make([]float64, len(featureCols))
			for j, col := range featureCols {
				X[i][j] = col.Values[r].Float()
			}
			y[i] = targetCol.Values[r]
		}
		return X, y
	}
	partition.TrainX, partition.TrainY = build(partition.TrainRows)
	partition.EvalX, partition.EvalY = build(partition.EvalRows)
	return nil
}

// FitAndScore builds the estimator for variant, fits it and returns the eval
// score: accuracy for classifiers, R² for regressors.
func (t *Trainer) FitAndScore(variant training.Variant, partition *training.Partition) (float64, error) {
	start := time.Now()

	var score float64
	var err error
	if variant.IsClassifier() {
		score, err = t.fitClassifier(variant, partition)
	} else {
		score, err = t.fitRegressor(variant, partition)
	}
	if err != nil {
		return 0, core.NewTrainingFailedError(string(variant), err)
	}

	log.Printf("[Trainer] %s fitted on %d rows, scored %.4f on %d rows in %.2fms",
		variant, len(partition.TrainX), score, len(partition.EvalX), float64(time.Since(start).Nanoseconds())/1e6)
	return score, nil
}

func (t *Trainer) fitRegressor(variant training.Variant, partition *training.Partition) (float64, error) {
	var model learning.Regressor
	switch variant {
	case training.VariantLinearRegression:
		model = learning.NewLinearRegression()
	case training.VariantRandomForestRegressor:
		model = learning.NewRandomForestRegressor()
	case training.VariantGradientBoostingRegressor:
		model = learning.NewGradientBoostingRegressor()
	default:
		return 0, fmt.Errorf("no regressor for variant %s", variant)
	}

	yTrain, err := numericTargets(partition.TrainY)
	if err != nil {
		return 0, err
	}
	yEval, err := numericTargets(partition.EvalY)
	if err != nil {
		return 0, err
	}
	if err := checkFeatures(partition.EvalX); err != nil {
		return 0, err
	}

	if err := model.Fit(partition.TrainX, yTrain); err != nil {
		return 0, err
	}
	predictions := model.Predict(partition.EvalX)
	for _, p := range predictions {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, learning.ErrNonFiniteResult
		}
	}
	return learning.R2(yEval, predictions), nil
}

func (t *Trainer) fitClassifier(variant training.Variant, partition *training.Partition) (float64, error) {
	var model learning.Classifier
	switch variant {
	case training.VariantLogisticRegression:
		model = learning.NewLogisticRegression(t.maxIterations)
	case training.VariantRandomForestClassifier:
		model = learning.NewRandomForestClassifier()
	case training.VariantSVC:
		model = learning.NewSVC(t.maxIterations)
	default:
		return 0, fmt.Errorf("no classifier for variant %s", variant)
	}

	encoder, err := NewLabelEncoder(partition.TrainY)
	if err != nil {
		return 0, err
	}
	if err := checkFeatures(partition.EvalX); err != nil {
		return 0, err
	}
	for _, v := range partition.EvalY {
		if v.IsMissing() {
			return 0, fmt.Errorf("target contains missing values")
		}
	}

	if err := model.Fit(partition.TrainX, encoder.Encode(partition.TrainY)); err != nil {
		return 0, err
	}
	return learning.Accuracy(encoder.Encode(partition.EvalY), model.Predict(partition.EvalX)), nil
}

func numericTargets(values []dataset.Value) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case v.IsMissing():
			return nil, fmt.Errorf("target contains missing values")
		case !v.IsNumeric():
			return nil, fmt.Errorf("could not convert target value %q to float", v.Str)
		}
		out[i] = v.Num
	}
	return out, nil
}

// checkFeatures reports NaN cells, which come from missing or non-numeric feature values
func checkFeatures(X [][]float64) error {
	for i, row := range X {
		for j, v := range row {
			if math.IsNaN(v) {
				return fmt.Errorf("input contains NaN or a non-numeric value at row %d, feature %d", i, j)
			}
		}
	}
	return nil
}

// LabelEncoder maps target values to class indices in sorted order:
// numbers ascending, then text.
type LabelEncoder struct {
	classes []dataset.Value
	index   map[string]int
}

// NewLabelEncoder learns the classes present in values
func NewLabelEncoder(values []dataset.Value) (*LabelEncoder, error) {
	seen := make(map[string]dataset.Value)
	for _, v := range values {
		if v.IsMissing() {
			return nil, fmt.Errorf("target contains missing values")
		}
		seen[v.Key()] = v
	}

	classes := make([]dataset.Value, 0, len(seen))
	for _, v := range seen {
		classes = append(classes, v)
	}
	sort.Slice(classes, func(a, b int) bool {
		ca, cb := classes[a], classes[b]
		if ca.IsNumeric() != cb.IsNumeric() {
			return ca.IsNumeric()
		}
		if ca.IsNumeric() {
			return ca.Num < cb.Num
		}
		return ca.Str < cb.Str
	})

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c.Key()] = i
	}
	return &LabelEncoder{classes: classes, index: index}, nil
}

// Classes returns the learned classes in index order
func (e *LabelEncoder) Classes() []dataset.Value {
	return e.classes
}

// Encode maps values to class indices; values never seen get -1
func (e *LabelEncoder) Encode(values []dataset.Value) []int {
	out := make([]int, len(values))
	for i, v := range values {
		if idx, ok := e.index[v.Key()]; ok {
			out[i] = idx
		} else {
			out[i] = -1
		}
	}
	return out
}
