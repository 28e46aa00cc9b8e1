package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions for the training pipeline
var (
	// Request errors
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = errors.New("column not found")
	ErrAlreadyExists   = errors.New("resource already exists")

	// Dataset errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidDataset    = errors.New("invalid dataset")
	ErrEmptyDataset      = errors.New("empty dataset")
	ErrInsufficientData  = errors.New("insufficient data for training")

	// Model errors
	ErrInvalidModel              = errors.New("invalid model type")
	ErrUnsupportedModelForTarget = errors.New("model does not support target")
	ErrTrainingFailed            = errors.New("training failed")
)

// Error constructors with context
func NewMissingParameterError(params ...string) error {
	if len(params) == 0 {
		return ErrMissingParameter
	}
	return fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(params, ", "))
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidParameter, field, reason)
}

func NewDatasetNotFoundError(ref string) error {
	return fmt.Errorf("%w %q", ErrDatasetNotFound, ref)
}

func NewUnsupportedFormatError(ref string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ref)
}

func NewInvalidDatasetError(ref string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrInvalidDataset, ref, err)
}

func NewColumnNotFoundError(columns ...string) error {
	return fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(columns, ", "))
}

func NewInsufficientDataError(trainRows, evalRows, total int) error {
	return fmt.Errorf("%w: train=%d eval=%d of %d rows", ErrInsufficientData, trainRows, evalRows, total)
}

func NewInvalidModelError(family string) error {
	return fmt.Errorf("%w %q", ErrInvalidModel, family)
}

func NewUnsupportedModelForTargetError(family, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrUnsupportedModelForTarget, family, reason)
}

func NewTrainingFailedError(variant string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTrainingFailed, variant, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsMissingParameterError(err error) bool {
	return errors.Is(err, ErrMissingParameter)
}

// IsRequestError reports whether err was caused by the caller's request rather
// than by the dataset contents or the numeric solver.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrMissingParameter) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrUnsupportedModelForTarget)
}

func IsTrainingError(err error) bool {
	return errors.Is(err, ErrTrainingFailed) ||
		errors.Is(err, ErrInsufficientData)
}
