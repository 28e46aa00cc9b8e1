// Package api holds the JSON wire types shared by the HTTP servers.
package api

import (
	"tabml/domain/training"
	"tabml/internal/errors"
)

// Default split percentages when a request omits them
const (
	DefaultTrainSize = 70.0
	DefaultTestSize  = 30.0
)

// TrainRequest is the body of POST /api/train
type TrainRequest struct {
	Filename         string   `json:"filename"`
	TargetColumn     string   `json:"targetColumn"`
	TrainFeatures    []string `json:"trainFeatures"`
	Normalize        bool     `json:"normalize"`
	NormalizeColumns []string `json:"normalizeColumns"`
	TrainSize        *float64 `json:"trainSize"`
	TestSize         *float64 `json:"testSize"`
	MLModel          string   `json:"mlModel"`
}

// Percentages returns the requested split sizes, defaulting to 70/30
func (r TrainRequest) Percentages() (float64, float64) {
	trainSize, testSize := DefaultTrainSize, DefaultTestSize
	if r.TrainSize != nil {
		trainSize = *r.TrainSize
	}
	if r.TestSize != nil {
		testSize = *r.TestSize
	}
	return trainSize, testSize
}

// ToDomain converts the wire request; percentages become fractions
func (r TrainRequest) ToDomain() training.Request {
	trainSize, testSize := r.Percentages()
	return training.Request{
		DatasetRef:       r.Filename,
		TargetColumn:     r.TargetColumn,
		FeatureColumns:   r.TrainFeatures,
		Normalize:        r.Normalize,
		NormalizeColumns: r.NormalizeColumns,
		TrainFraction:    trainSize / 100,
		EvalFraction:     testSize / 100,
		ModelFamily:      r.MLModel,
	}
}

// TrainResponse is the success body of POST /api/train
type TrainResponse struct {
	Status    string  `json:"status"`
	Model     string  `json:"model"`
	Accuracy  float64 `json:"accuracy"`
	TrainSize float64 `json:"train_size"`
	TestSize  float64 `json:"test_size"`
	Variant   string  `json:"variant"`
	RunID     string  `json:"run_id"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// NewTrainResponse reports a result with the percentages the request used
func NewTrainResponse(req TrainRequest, result *training.Result) TrainResponse {
	trainSize, testSize := req.Percentages()
	return TrainResponse{
		Status:    "success",
		Model:     result.ModelFamily.DisplayName(),
		Accuracy:  result.Score,
		TrainSize: trainSize,
		TestSize:  testSize,
		Variant:   string(result.Variant),
		RunID:     result.RunID.String(),
		TrainRows: result.TrainRows,
		TestRows:  result.EvalRows,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewErrorResponse maps err to its body and HTTP status
func NewErrorResponse(err error) (int, ErrorResponse) {
	return errors.HTTPStatus(err), ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)}
}

// UploadResponse is the body of a successful POST /api/upload
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// MessageResponse carries a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	User    any    `json:"user,omitempty"`
}
