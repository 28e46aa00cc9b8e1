// Package preprocess turns a loaded table into the numeric subset a model is trained on.
package preprocess

import (
	"fmt"
	"log"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/domain/training"

	"github.com/montanaflynn/stats"
)

// Spec describes the preprocessing requested for one training run
type Spec struct {
	Target           string
	Features         []string
	Normalize        bool
	NormalizeColumns []string
	FitScope         training.ScalerFitScope
}

// SpecFromRequest builds a preprocessing spec from a training request
func SpecFromRequest(req training.Request, scope training.ScalerFitScope) Spec {
	return Spec{
		Target:           req.TargetColumn,
		Features:         req.FeatureColumns,
		Normalize:        req.Normalize,
		NormalizeColumns: req.NormalizeColumns,
		FitScope:         scope,
	}
}

// ScaledColumns returns the columns to normalize, or nil when normalization is off
func (s Spec) ScaledColumns() []string {
	if !s.Normalize || len(s.NormalizeColumns) == 0 {
		return nil
	}
	return s.NormalizeColumns
}

// Prepared is the cleaned subset. Deferred lists columns still to be scaled
// on training rows once the partition is known.
type Prepared struct {
	Table    *dataset.Table
	Deferred []string
}

// Preprocessor selects, imputes and normalizes
type Preprocessor struct{}

// NewPreprocessor creates a preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Prepare subsets the table to [target, ...features], fills numeric gaps with
// column means and applies min-max scaling. The input table is not modified.
func (p *Preprocessor) Prepare(table *dataset.Table, spec Spec) (*Prepared, error) {
	columns := append([]string{spec.Target}, spec.Features...)
	subset, err := Select(table, columns)
	if err != nil {
		return nil, err
	}

	imputed := ImputeMean(subset)
	if imputed > 0 {
		log.Printf("[Preprocessor] Imputed %d missing numeric cells", imputed)
	}

	scaled := spec.ScaledColumns()
	if err := checkScalable(subset, scaled); err != nil {
		return nil, err
	}

	prepared := &Prepared{Table: subset}
	switch {
	case len(scaled) == 0:
	case spec.FitScope == training.ScalerFitTrain:
		prepared.Deferred = scaled
	default:
		if err := Normalize(subset, scaled, nil); err != nil {
			return nil, err
		}
	}
	return prepared, nil
}

// Select returns a copy of the named columns in the given order.
// Every absent column is named in the error.
func Select(table *dataset.Table, columns []string) (*dataset.Table, error) {
	var missing []string
	selected := make([]*dataset.Column, 0, len(columns))
	for _, name := range columns {
		col := table.Column(name)
		if col == nil {
			missing = append(missing, name)
			continue
		}
		selected = append(selected, col.Clone())
	}
	if len(missing) > 0 {
		return nil, core.NewColumnNotFoundError(missing...)
	}
	return dataset.NewTable(selected...)
}

// ImputeMean replaces missing cells of numeric columns with the column mean
// and returns the number of cells filled. Columns with no present values and
// categorical columns are left as they are.
func ImputeMean(table *dataset.Table) int {
	filled := 0
	for _, col := range table.Columns {
		if !col.IsNumeric() {
			continue
		}
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}
		mean, err := stats.Mean(stats.Float64Data(col.NonMissingFloats()))
		if err != nil {
			continue
		}
		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = dataset.NewNumericValue(mean)
			}
		}
		filled += missing
	}
	return filled
}

// Normalize min-max scales the named columns in place. The scaler is fitted on
// fitRows, or on every row when fitRows is nil, and applied to every row.
func Normalize(table *dataset.Table, columns []string, fitRows []int) error {
	if err := checkScalable(table, columns); err != nil {
		return err
	}
	for _, name := range columns {
		col := table.Column(name)
		values := col.Floats()

		var scaler MinMaxScaler
		if fitRows == nil {
			scaler.Fit(values)
		} else {
			fitValues := make([]float64, len(fitRows))
			for i, row := range fitRows {
				fitValues[i] = values[row]
			}
			scaler.Fit(fitValues)
		}

		scaled := make([]dataset.Value, len(values))
		for i, v := range values {
			scaled[i] = dataset.NewNumericValue(scaler.Transform(v))
		}
		if err := table.ReplaceColumn(name, scaled); err != nil {
			return err
		}
	}
	return nil
}

func checkScalable(table *dataset.Table, columns []string) error {
	var missing []string
	for _, name := range columns {
		col := table.Column(name)
		if col == nil {
			missing = append(missing, name)
			continue
		}
		if !col.IsNumeric() {
			return core.NewTrainingFailedError("MinMaxScaler", fmt.Errorf("cannot scale non-numeric column %q", name))
		}
	}
	if len(missing) > 0 {
		return core.NewColumnNotFoundError(missing...)
	}
	return nil
}
