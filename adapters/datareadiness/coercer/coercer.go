package coercer

import (
	"math"
	"strconv"
	"strings"

	"tabml/domain/dataset"
)

// TypeCoercer handles deterministic type coercion of raw file cells
type TypeCoercer struct {
	config  CoercionConfig
	markers map[string]bool
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // fraction of present values that must parse as numbers
	BooleanThreshold float64  `json:"boolean_threshold"` // fraction of present values that must parse as booleans
	MissingMarkers   []string `json:"missing_markers"`   // cell texts read as missing
}

// DefaultMissingMarkers are the cell texts treated as missing, matching common dataframe readers
var DefaultMissingMarkers = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"null", "NULL", "None", "#N/A", "<NA>",
}

// DefaultCoercionConfig returns strict whole-column inference: a column is
// numeric only when every present cell is a number.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		BooleanThreshold: 1.0,
		MissingMarkers:   DefaultMissingMarkers,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	markers := make(map[string]bool, len(config.MissingMarkers))
	for _, m := range config.MissingMarkers {
		markers[m] = true
	}
	return &TypeCoercer{config: config, markers: markers}
}

// IsMissing reports whether a raw cell represents a missing value
func (c *TypeCoercer) IsMissing(raw string) bool {
	return c.markers[strings.TrimSpace(raw)]
}

// CoerceColumn infers the column type and converts every cell
func (c *TypeCoercer) CoerceColumn(name string, raw []string) *dataset.Column {
	analysis := c.AnalyzeTypeDistribution(raw)

	values := make([]dataset.Value, len(raw))
	for i, cell := range raw {
		values[i] = c.coerceCell(cell, analysis.RecommendedType)
	}

	columnType := dataset.ColumnCategorical
	if analysis.RecommendedType != ValueTypeString {
		columnType = dataset.ColumnNumeric
	}

	return &dataset.Column{Name: name, Type: columnType, Values: values}
}

func (c *TypeCoercer) coerceCell(cell string, valueType ValueType) dataset.Value {
	if c.IsMissing(cell) {
		return dataset.NewMissingValue()
	}
	switch valueType {
	case ValueTypeNumeric:
		if v, ok := c.tryParseNumeric(cell); ok {
			return dataset.NewNumericValue(v)
		}
	case ValueTypeBoolean:
		if v, ok := c.tryParseBoolean(cell); ok {
			if v {
				return dataset.NewNumericValue(1)
			}
			return dataset.NewNumericValue(0)
		}
	}
	return dataset.NewTextValue(strings.TrimSpace(cell))
}

// AnalyzeTypeDistribution counts how many present cells parse as each type
func (c *TypeCoercer) AnalyzeTypeDistribution(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}

	for _, cell := range raw {
		if c.IsMissing(cell) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.tryParseNumeric(cell); ok {
			analysis.NumericCount++
		}
		if _, ok := c.tryParseBoolean(cell); ok {
			analysis.BooleanCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.BooleanRatio = float64(analysis.BooleanCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

// tryParseNumeric accepts decimal and scientific notation plus inf/-inf.
// Hexadecimal and digit-grouped forms stay text.
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" || strings.ContainsAny(cleanVal, "xX_,") {
		return 0, false
	}
	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// tryParseBoolean accepts only literal true/false spellings
func (c *TypeCoercer) tryParseBoolean(strVal string) (bool, bool) {
	switch strings.TrimSpace(strVal) {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	}
	return false, false
}

// determineRecommendedType chooses the best type based on analysis.
// An all-missing column is numeric, so it reaches imputation and fails there.
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) ValueType {
	if analysis.ValidCount == 0 {
		return ValueTypeNumeric
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return ValueTypeNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return ValueTypeBoolean
	}
	return ValueTypeString
}

// ValueType is the storage type recommended for a column
type ValueType string

const (
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeString  ValueType = "string"
)

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int       `json:"total_count"`
	ValidCount      int       `json:"valid_count"`
	NumericCount    int       `json:"numeric_count"`
	BooleanCount    int       `json:"boolean_count"`
	NumericRatio    float64   `json:"numeric_ratio"`
	BooleanRatio    float64   `json:"boolean_ratio"`
	RecommendedType ValueType `json:"recommended_type"`
}
