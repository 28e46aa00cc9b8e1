package training

import (
	"fmt"
	"math"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/domain/training"
)

// TargetShapeOf summarises the target values of the partition rows (train and
// eval together). Missing values are ignored.
func TargetShapeOf(column *dataset.Column, partition *training.Partition) training.TargetShape {
	shape := training.TargetShape{Numeric: true, Integral: true}
	distinct := make(map[string]bool)

	visit := func(rows []int) {
		for _, r := range rows {
			v := column.Values[r]
			if v.IsMissing() {
				continue
			}
			if !v.IsNumeric() {
				shape.Numeric = false
				shape.Integral = false
			} else if v.Num != math.Trunc(v.Num) {
				shape.Integral = false
			}
			distinct[v.Key()] = true
		}
	}
	visit(partition.TrainRows)
	visit(partition.EvalRows)

	shape.Distinct = len(distinct)
	return shape
}

// SelectVariant maps a family and target shape to the concrete estimator.
// It has no side effects; the estimator itself is built only after selection.
func SelectVariant(family training.ModelFamily, shape training.TargetShape, policy training.LogisticTargetPolicy) (training.Variant, error) {
	switch family {
	case training.FamilyLinearRegression:
		return training.VariantLinearRegression, nil
	case training.FamilyGradientBoosting:
		return training.VariantGradientBoostingRegressor, nil
	case training.FamilyLogisticRegression:
		if policy == training.LogisticStrict && shape.Numeric && !shape.Integral {
			return "", core.NewUnsupportedModelForTargetError(string(family), "requires class labels, target has non-integer numeric values")
		}
		return training.VariantLogisticRegression, nil
	case training.FamilyRandomForest:
		if shape.Categorical() {
			return training.VariantRandomForestClassifier, nil
		}
		return training.VariantRandomForestRegressor, nil
	case training.FamilySVM:
		if shape.Continuous() {
			return "", core.NewUnsupportedModelForTargetError(string(family), "is classification-only and the target is continuous")
		}
		if !shape.Categorical() {
			return "", core.NewUnsupportedModelForTargetError(string(family), fmt.Sprintf("is classification-only and the numeric target has %d distinct values", shape.Distinct))
		}
		return training.VariantSVC, nil
	}
	return "", core.NewInvalidModelError(string(family))
}
