package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-123", RunID("run-123"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestErrorConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"missing parameter", NewMissingParameterError("targetColumn"), ErrMissingParameter},
		{"invalid parameter", NewValidationError("trainSize", "must be in (0, 100]"), ErrInvalidParameter},
		{"dataset not found", NewDatasetNotFoundError("x.csv"), ErrNotFound},
		{"unsupported format", NewUnsupportedFormatError("x.json"), ErrUnsupportedFormat},
		{"column not found", NewColumnNotFoundError("age", "income"), ErrColumnNotFound},
		{"insufficient data", NewInsufficientDataError(0, 3, 3), ErrInsufficientData},
		{"invalid model", NewInvalidModelError("knn"), ErrInvalidModel},
		{"unsupported for target", NewUnsupportedModelForTargetError("svm", "requires a categorical target"), ErrUnsupportedModelForTarget},
		{"training failed", NewTrainingFailedError("linear_regression", errors.New("singular")), ErrTrainingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("expected %v to wrap %v", tt.err, tt.sentinel)
			}
		})
	}

	if !IsNotFoundError(NewDatasetNotFoundError("x.csv")) {
		t.Error("dataset not found should be a not-found error")
	}
	if !IsRequestError(NewColumnNotFoundError("a")) {
		t.Error("column not found should be a request error")
	}
	if IsRequestError(NewTrainingFailedError("svm", errors.New("nan"))) {
		t.Error("training failure should not be a request error")
	}
}
