package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/domain/training"
	"tabml/internal/config"
	datasetstore "tabml/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingLoader fails the test if the pipeline reaches file I/O
type failingLoader struct{ t *testing.T }

func (l failingLoader) Load(ctx context.Context, ref string) (*dataset.Table, error) {
	l.t.Fatalf("loader called for %q", ref)
	return nil, nil
}

// writeClusters writes n rows whose label is determined by the cluster of (a, b)
func writeClusters(t *testing.T, dir, name string, n, classes int) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("a,b,size,label\n")
	for i := 0; i < n; i++ {
		c := i % classes
		jitter := float64(i%5) * 0.1
		size := fmt.Sprintf("%d", 10+i)
		if i == 3 {
			size = "NA"
		}
		fmt.Fprintf(&sb, "%.2f,%.2f,%s,%d\n", float64(c)*4+jitter, float64(c)*-2-jitter, size, c)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0o644))
}

func newService(dir string, mutate func(*config.TrainingConfig)) *TrainingService {
	cfg := config.Default().Training
	if mutate != nil {
		mutate(&cfg)
	}
	return NewTrainingService(datasetstore.NewLoader(dir), cfg)
}

func baseRequest(family string) training.Request {
	return training.Request{
		DatasetRef:     "clusters.csv",
		TargetColumn:   "label",
		FeatureColumns: []string{"a", "b", "size"},
		TrainFraction:  0.7,
		EvalFraction:   0.3,
		ModelFamily:    family,
	}
}

func TestTrain_MissingTargetBeforeIO(t *testing.T) {
	svc := NewTrainingService(failingLoader{t}, config.Default().Training)

	req := baseRequest("random_forest")
	req.TargetColumn = ""
	_, err := svc.Train(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrMissingParameter)
	assert.Contains(t, err.Error(), "targetColumn")
}

func TestTrain_InvalidModelBeforeIO(t *testing.T) {
	svc := NewTrainingService(failingLoader{t}, config.Default().Training)

	_, err := svc.Train(context.Background(), baseRequest("neural_net"))
	assert.ErrorIs(t, err, core.ErrInvalidModel)
}

func TestTrain_MissingDataset(t *testing.T) {
	svc := newService(t.TempDir(), nil)

	result, err := svc.Train(context.Background(), baseRequest("random_forest"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTrain_Classification(t *testing.T) {
	dir := t.TempDir()
	writeClusters(t, dir, "clusters.csv", 60, 3)
	svc := newService(dir, nil)

	for _, family := range []string{"random_forest", "logistic_regression", "svm"} {
		t.Run(family, func(t *testing.T) {
			result, err := svc.Train(context.Background(), baseRequest(family))
			require.NoError(t, err)

			assert.True(t, result.Variant.IsClassifier())
			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 1.0)
			assert.Equal(t, 42, result.TrainRows)
			assert.Equal(t, 18, result.EvalRows)
			assert.InDelta(t, 0.7, result.EffectiveTrainFraction, 1e-9)
			assert.NotEmpty(t, result.RunID)
		})
	}
}

func TestTrain_TwoDistinctNumericTargetIsRegression(t *testing.T) {
	dir := t.TempDir()
	writeClusters(t, dir, "clusters.csv", 40, 2)
	svc := newService(dir, nil)

	result, err := svc.Train(context.Background(), baseRequest("random_forest"))
	require.NoError(t, err)
	assert.Equal(t, training.VariantRandomForestRegressor, result.Variant)

	_, err = svc.Train(context.Background(), baseRequest("svm"))
	assert.ErrorIs(t, err, core.ErrUnsupportedModelForTarget)
}

func TestTrain_ContinuousTarget(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("x,noise,price\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "%d,%d,%.2f\n", i, i%7, 1.37*float64(i)+0.5)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prices.csv"), []byte(sb.String()), 0o644))

	req := training.Request{
		DatasetRef:     "prices.csv",
		TargetColumn:   "price",
		FeatureColumns: []string{"x", "noise"},
		TrainFraction:  0.7,
		EvalFraction:   0.3,
	}
	svc := newService(dir, nil)

	req.ModelFamily = "svm"
	result, err := svc.Train(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrUnsupportedModelForTarget)
	assert.Nil(t, result)

	req.ModelFamily = "random_forest"
	result, err = svc.Train(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, training.VariantRandomForestRegressor, result.Variant)
	assert.Greater(t, result.Score, 0.5)
}

func TestTrain_NormalizationScopes(t *testing.T) {
	dir := t.TempDir()
	writeClusters(t, dir, "clusters.csv", 60, 3)

	for _, scope := range []training.ScalerFitScope{training.ScalerFitFull, training.ScalerFitTrain} {
		t.Run(string(scope), func(t *testing.T) {
			svc := newService(dir, func(c *config.TrainingConfig) { c.ScalerFitScope = scope })
			req := baseRequest("linear_regression")
			req.Normalize = true
			req.NormalizeColumns = []string{"a", "size"}

			result, err := svc.Train(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, training.VariantLinearRegression, result.Variant)
			assert.Greater(t, result.Score, 0.9)
		})
	}
}

func TestTrain_StageErrors(t *testing.T) {
	dir := t.TempDir()
	writeClusters(t, dir, "clusters.csv", 60, 3)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.csv"), []byte("a,b,size,label\n1,2,3,0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "text.csv"), []byte("a,b,size,label\nx,1,2,0\ny,2,3,1\nz,3,4,2\nw,4,5,0\n"), 0o644))

	tests := []struct {
		name     string
		mutate   func(*training.Request)
		sentinel error
	}{
		{"unknown column", func(r *training.Request) { r.FeatureColumns = []string{"a", "ghost"} }, core.ErrColumnNotFound},
		{"unsupported format", func(r *training.Request) { r.DatasetRef = "notes.txt" }, core.ErrUnsupportedFormat},
		{"too few rows", func(r *training.Request) { r.DatasetRef = "one.csv" }, core.ErrInsufficientData},
		{"text feature", func(r *training.Request) { r.DatasetRef = "text.csv"; r.TrainFraction = 0.5; r.EvalFraction = 0.5 }, core.ErrTrainingFailed},
		{"scaling text", func(r *training.Request) {
			r.DatasetRef = "text.csv"
			r.Normalize = true
			r.NormalizeColumns = []string{"a"}
		}, core.ErrTrainingFailed},
	}

	svc := newService(dir, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest("random_forest")
			tt.mutate(&req)
			_, err := svc.Train(context.Background(), req)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestTrain_StrictLogisticPolicy(t *testing.T) {
	dir := t.TempDir()
	content := "x,y\n1,0.5\n2,1.5\n3,2.5\n4,3.5\n5,4.5\n6,5.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cont.csv"), []byte(content), 0o644))

	req := training.Request{
		DatasetRef:     "cont.csv",
		TargetColumn:   "y",
		FeatureColumns: []string{"x"},
		TrainFraction:  0.5,
		EvalFraction:   0.5,
		ModelFamily:    "logistic_regression",
	}

	strict := newService(dir, func(c *config.TrainingConfig) { c.LogisticTargetPolicy = training.LogisticStrict })
	_, err := strict.Train(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrUnsupportedModelForTarget)

	permissive := newService(dir, nil)
	result, err := permissive.Train(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, training.VariantLogisticRegression, result.Variant)
}

func TestTrain_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeClusters(t, dir, "clusters.csv", 30, 3)
	svc := newService(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Train(ctx, baseRequest("random_forest"))
	assert.ErrorIs(t, err, context.Canceled)
}
