package preprocess

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler maps a column linearly onto [0, 1] using the range seen at fit time
type MinMaxScaler struct {
	Min    float64
	Max    float64
	fitted bool
}

// Fit learns the range of the present (non-NaN) values
func (s *MinMaxScaler) Fit(values []float64) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		s.fitted = false
		return
	}
	s.Min = floats.Min(present)
	s.Max = floats.Max(present)
	s.fitted = true
}

// Transform scales one value. A constant range maps everything to 0; NaN passes through.
func (s *MinMaxScaler) Transform(v float64) float64 {
	if !s.fitted || math.IsNaN(v) {
		return v
	}
	span := s.Max - s.Min
	if span == 0 {
		return 0
	}
	return (v - s.Min) / span
}

// FitTransform fits on values and returns the scaled copy
func (s *MinMaxScaler) FitTransform(values []float64) []float64 {
	s.Fit(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}
