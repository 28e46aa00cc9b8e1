package training

import (
	"strings"
	"time"

	"tabml/domain/core"
	"tabml/domain/dataset"
)

// ModelFamily is the requested class of training algorithm
type ModelFamily string

const (
	FamilyLinearRegression   ModelFamily = "linear_regression"
	FamilyLogisticRegression ModelFamily = "logistic_regression"
	FamilyRandomForest       ModelFamily = "random_forest"
	FamilySVM                ModelFamily = "svm"
	FamilyGradientBoosting   ModelFamily = "gradient_boosting"
)

// Families lists every recognised model family
var Families = []ModelFamily{
	FamilyLinearRegression,
	FamilyLogisticRegression,
	FamilyRandomForest,
	FamilySVM,
	FamilyGradientBoosting,
}

// ParseModelFamily maps a wire name to a family; unknown names are InvalidModel errors
func ParseModelFamily(s string) (ModelFamily, error) {
	for _, f := range Families {
		if string(f) == s {
			return f, nil
		}
	}
	return "", core.NewInvalidModelError(s)
}

// DisplayName renders the family the way responses show it ("random forest")
func (f ModelFamily) DisplayName() string {
	return strings.ReplaceAll(string(f), "_", " ")
}

// Variant is the concrete estimator chosen from a family
type Variant string

const (
	VariantLinearRegression          Variant = "LinearRegression"
	VariantLogisticRegression        Variant = "LogisticRegression"
	VariantRandomForestClassifier    Variant = "RandomForestClassifier"
	VariantRandomForestRegressor     Variant = "RandomForestRegressor"
	VariantSVC                       Variant = "SVC"
	VariantGradientBoostingRegressor Variant = "GradientBoostingRegressor"
)

// IsClassifier reports whether the variant predicts class labels
func (v Variant) IsClassifier() bool {
	switch v {
	case VariantLogisticRegression, VariantRandomForestClassifier, VariantSVC:
		return true
	}
	return false
}

// TargetShape summarises the target sequence for variant selection
type TargetShape struct {
	Numeric  bool // every present value is a number
	Integral bool // every present numeric value has no fractional part
	Distinct int  // distinct present values across train and eval rows
}

// Continuous reports a numeric target with at least one non-integer value
func (s TargetShape) Continuous() bool {
	return s.Numeric && !s.Integral
}

// Categorical applies the selection rule: non-numeric targets, or integer
// targets with more than two distinct values, are treated as classes.
func (s TargetShape) Categorical() bool {
	return !s.Numeric || (s.Integral && s.Distinct > 2)
}

// ScalerFitScope controls which rows the min-max scaler learns from
type ScalerFitScope string

const (
	// ScalerFitFull fits on every row before partitioning (leaks eval statistics)
	ScalerFitFull ScalerFitScope = "full"
	// ScalerFitTrain fits on training rows and applies to all rows
	ScalerFitTrain ScalerFitScope = "train"
)

// LogisticTargetPolicy controls whether logistic regression checks the target shape
type LogisticTargetPolicy string

const (
	LogisticPermissive LogisticTargetPolicy = "permissive"
	LogisticStrict     LogisticTargetPolicy = "strict"
)

// Request is the immutable training request consumed by the pipeline
type Request struct {
	DatasetRef       string
	TargetColumn     string
	FeatureColumns   []string
	Normalize        bool
	NormalizeColumns []string
	TrainFraction    float64
	EvalFraction     float64
	ModelFamily      string
}

// Validate reports missing parameters first, then malformed ones
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.DatasetRef) == "" {
		missing = append(missing, "filename")
	}
	if strings.TrimSpace(r.TargetColumn) == "" {
		missing = append(missing, "targetColumn")
	}
	if len(r.FeatureColumns) == 0 {
		missing = append(missing, "trainFeatures")
	}
	if strings.TrimSpace(r.ModelFamily) == "" {
		missing = append(missing, "mlModel")
	}
	if len(missing) > 0 {
		return core.NewMissingParameterError(missing...)
	}

	seen := make(map[string]bool, len(r.FeatureColumns))
	for _, f := range r.FeatureColumns {
		if f == r.TargetColumn {
			return core.NewValidationError("trainFeatures", "must not include the target column "+f)
		}
		if seen[f] {
			return core.NewValidationError("trainFeatures", "duplicate feature "+f)
		}
		seen[f] = true
	}
	if r.TrainFraction <= 0 || r.TrainFraction > 1 {
		return core.NewValidationError("trainSize", "must be in (0, 100]")
	}
	if r.EvalFraction <= 0 || r.EvalFraction > 1 {
		return core.NewValidationError("testSize", "must be in (0, 100]")
	}
	return nil
}

// Columns returns the subset the pipeline works on: target first, then features
func (r Request) Columns() []string {
	cols := make([]string, 0, len(r.FeatureColumns)+1)
	cols = append(cols, r.TargetColumn)
	return append(cols, r.FeatureColumns...)
}

// Partition holds disjoint train and eval rows with their features and targets
type Partition struct {
	TrainRows []int
	EvalRows  []int
	TrainX    [][]float64
	EvalX     [][]float64
	TrainY    []dataset.Value
	EvalY     []dataset.Value
}

// Result is the outcome of one training invocation
type Result struct {
	RunID                  core.RunID    `json:"run_id"`
	ModelFamily            ModelFamily   `json:"model_family"`
	Variant                Variant       `json:"variant"`
	Score                  float64       `json:"score"`
	EffectiveTrainFraction float64       `json:"effective_train_fraction"`
	EffectiveEvalFraction  float64       `json:"effective_eval_fraction"`
	TrainRows              int           `json:"train_rows"`
	EvalRows               int           `json:"eval_rows"`
	Duration               time.Duration `json:"duration"`
}
