package training

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/domain/training"
)

func numericValues(values ...float64) []dataset.Value {
	out := make([]dataset.Value, len(values))
	for i, v := range values {
		out[i] = dataset.NewNumericValue(v)
	}
	return out
}

func textValues(values ...string) []dataset.Value {
	out := make([]dataset.Value, len(values))
	for i, v := range values {
		out[i] = dataset.NewTextValue(v)
	}
	return out
}

func shapeOf(values []dataset.Value) training.TargetShape {
	rows := make([]int, len(values))
	for i := range rows {
		rows[i] = i
	}
	half := len(rows) / 2
	return TargetShapeOf(&dataset.Column{Name: "y", Values: values}, &training.Partition{TrainRows: rows[:half], EvalRows: rows[half:]})
}

func TestTargetShapeOf(t *testing.T) {
	tests := []struct {
		name   string
		values []dataset.Value
		want   training.TargetShape
	}{
		{"binary numeric", numericValues(0, 1, 1, 0), training.TargetShape{Numeric: true, Integral: true, Distinct: 2}},
		{"three classes", numericValues(0, 1, 2, 1), training.TargetShape{Numeric: true, Integral: true, Distinct: 3}},
		{"continuous", numericValues(0.5, 1.25, 2, 3), training.TargetShape{Numeric: true, Integral: false, Distinct: 4}},
		{"labels", textValues("a", "b", "a", "b"), training.TargetShape{Numeric: false, Integral: false, Distinct: 2}},
		{"missing ignored", append(numericValues(1, 2), dataset.NewMissingValue(), dataset.NewNumericValue(1)), training.TargetShape{Numeric: true, Integral: true, Distinct: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shapeOf(tt.values); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestSelectVariant(t *testing.T) {
	twoDistinct := training.TargetShape{Numeric: true, Integral: true, Distinct: 2}
	threeDistinct := training.TargetShape{Numeric: true, Integral: true, Distinct: 3}
	continuous := training.TargetShape{Numeric: true, Integral: false, Distinct: 50}
	labels := training.TargetShape{Numeric: false, Distinct: 2}

	tests := []struct {
		name     string
		family   training.ModelFamily
		shape    training.TargetShape
		policy   training.LogisticTargetPolicy
		want     training.Variant
		sentinel error
	}{
		{"forest two distinct numeric is regression", training.FamilyRandomForest, twoDistinct, training.LogisticPermissive, training.VariantRandomForestRegressor, nil},
		{"forest three distinct is classification", training.FamilyRandomForest, threeDistinct, training.LogisticPermissive, training.VariantRandomForestClassifier, nil},
		{"forest text labels", training.FamilyRandomForest, labels, training.LogisticPermissive, training.VariantRandomForestClassifier, nil},
		{"forest on continuous is regression", training.FamilyRandomForest, continuous, training.LogisticPermissive, training.VariantRandomForestRegressor, nil},
		{"svm on three integer classes", training.FamilySVM, threeDistinct, training.LogisticPermissive, training.VariantSVC, nil},
		{"svm on continuous with few values", training.FamilySVM, training.TargetShape{Numeric: true, Distinct: 3}, training.LogisticPermissive, "", core.ErrUnsupportedModelForTarget},
		{"svm on labels", training.FamilySVM, labels, training.LogisticPermissive, training.VariantSVC, nil},
		{"svm on continuous", training.FamilySVM, continuous, training.LogisticPermissive, "", core.ErrUnsupportedModelForTarget},
		{"svm on two distinct numeric", training.FamilySVM, twoDistinct, training.LogisticPermissive, "", core.ErrUnsupportedModelForTarget},
		{"linear ignores shape", training.FamilyLinearRegression, labels, training.LogisticPermissive, training.VariantLinearRegression, nil},
		{"boosting", training.FamilyGradientBoosting, continuous, training.LogisticPermissive, training.VariantGradientBoostingRegressor, nil},
		{"logistic permissive on continuous", training.FamilyLogisticRegression, continuous, training.LogisticPermissive, training.VariantLogisticRegression, nil},
		{"logistic strict on continuous", training.FamilyLogisticRegression, continuous, training.LogisticStrict, "", core.ErrUnsupportedModelForTarget},
		{"logistic strict on integers", training.FamilyLogisticRegression, twoDistinct, training.LogisticStrict, training.VariantLogisticRegression, nil},
		{"logistic strict on labels", training.FamilyLogisticRegression, labels, training.LogisticStrict, training.VariantLogisticRegression, nil},
		{"unknown family", training.ModelFamily("knn"), labels, training.LogisticPermissive, "", core.ErrInvalidModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectVariant(tt.family, tt.shape, tt.policy)
			if tt.sentinel != nil {
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("expected %v, got %v", tt.sentinel, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// clusterTable builds two numeric features with a label that depends on them
func clusterTable(t *testing.T, n, classes int) *dataset.Table {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	x0 := &dataset.Column{Name: "x0", Type: dataset.ColumnNumeric}
	x1 := &dataset.Column{Name: "x1", Type: dataset.ColumnNumeric}
	y := &dataset.Column{Name: "y", Type: dataset.ColumnNumeric}
	for i := 0; i < n; i++ {
		c := i % classes
		x0.Values = append(x0.Values, dataset.NewNumericValue(float64(c)*5+rng.NormFloat64()*0.3))
		x1.Values = append(x1.Values, dataset.NewNumericValue(float64(c)*-3+rng.NormFloat64()*0.3))
		y.Values = append(y.Values, dataset.NewNumericValue(float64(c)))
	}
	table, err := dataset.NewTable(y, x0, x1)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func splitRows(n int) *training.Partition {
	p := &training.Partition{}
	for i := 0; i < n; i++ {
		if i%4 == 3 {
			p.EvalRows = append(p.EvalRows, i)
		} else {
			p.TrainRows = append(p.TrainRows, i)
		}
	}
	return p
}

func TestFitAndScoreClassifiers(t *testing.T) {
	table := clusterTable(t, 60, 3)

	for _, variant := range []training.Variant{
		training.VariantRandomForestClassifier,
		training.VariantLogisticRegression,
		training.VariantSVC,
	} {
		t.Run(string(variant), func(t *testing.T) {
			partition := splitRows(table.RowCount())
			if err := Assemble(table, "y", []string{"x0", "x1"}, partition); err != nil {
				t.Fatal(err)
			}
			score, err := NewTrainer(1000).FitAndScore(variant, partition)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score < 0 || score > 1 {
				t.Errorf("accuracy %v outside [0,1]", score)
			}
			if score < 0.9 {
				t.Errorf("expected separable clusters to score >= 0.9, got %v", score)
			}
		})
	}
}

func TestFitAndScoreRegressors(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := &dataset.Column{Name: "x", Type: dataset.ColumnNumeric}
	y := &dataset.Column{Name: "y", Type: dataset.ColumnNumeric}
	for i := 0; i < 80; i++ {
		v := rng.Float64() * 10
		x.Values = append(x.Values, dataset.NewNumericValue(v))
		y.Values = append(y.Values, dataset.NewNumericValue(4*v-2+rng.NormFloat64()*0.1))
	}
	table, err := dataset.NewTable(y, x)
	if err != nil {
		t.Fatal(err)
	}

	for _, variant := range []training.Variant{
		training.VariantLinearRegression,
		training.VariantRandomForestRegressor,
		training.VariantGradientBoostingRegressor,
	} {
		t.Run(string(variant), func(t *testing.T) {
			partition := splitRows(table.RowCount())
			if err := Assemble(table, "y", []string{"x"}, partition); err != nil {
				t.Fatal(err)
			}
			score, err := NewTrainer(0).FitAndScore(variant, partition)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score < 0.9 || score > 1 {
				t.Errorf("expected R2 close to 1, got %v", score)
			}
		})
	}
}

func TestFitAndScoreFailures(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name    string
		variant training.Variant
		trainX  [][]float64
		trainY  []dataset.Value
	}{
		{"nan feature", training.VariantLinearRegression, [][]float64{{1}, {nan}}, numericValues(1, 2)},
		{"text target for regression", training.VariantLinearRegression, [][]float64{{1}, {2}}, textValues("a", "b")},
		{"missing target", training.VariantRandomForestClassifier, [][]float64{{1}, {2}}, []dataset.Value{dataset.NewTextValue("a"), dataset.NewMissingValue()}},
		{"single class logistic", training.VariantLogisticRegression, [][]float64{{1}, {2}}, textValues("a", "a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partition := &training.Partition{
				TrainX: tt.trainX,
				TrainY: tt.trainY,
				EvalX:  [][]float64{{1}},
				EvalY:  tt.trainY[:1],
			}
			_, err := NewTrainer(10).FitAndScore(tt.variant, partition)
			if !errors.Is(err, core.ErrTrainingFailed) {
				t.Errorf("expected training failure, got %v", err)
			}
		})
	}
}

func TestAssembleReportsMissingColumns(t *testing.T) {
	table := clusterTable(t, 8, 2)
	err := Assemble(table, "y", []string{"x0", "nope"}, splitRows(8))
	if !errors.Is(err, core.ErrColumnNotFound) {
		t.Errorf("expected column not found, got %v", err)
	}
}

func TestLabelEncoderOrdering(t *testing.T) {
	values := []dataset.Value{dataset.NewTextValue("b"), dataset.NewNumericValue(10), dataset.NewTextValue("a"), dataset.NewNumericValue(2)}
	encoder, err := NewLabelEncoder(values)
	if err != nil {
		t.Fatal(err)
	}

	got := encoder.Encode(append(values, dataset.NewTextValue("unseen")))
	want := []int{3, 1, 2, 0, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if len(encoder.Classes()) != 4 {
		t.Errorf("expected 4 classes, got %d", len(encoder.Classes()))
	}
}
