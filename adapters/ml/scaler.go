// Package ml provides the trained model implementations behind the narrow
// ports interfaces: a standard scaler, an isolation forest for outlier
// scoring, and a two-member soft-voting classifier ensemble. Training is
// randomized; inference is strictly deterministic.
package ml

import (
	"math"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

// StandardScaler centers and scales features to zero mean and unit variance
// using statistics recorded at fit time.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-feature mean and standard deviation from training
// rows. Zero-variance features scale by 1 so constant columns pass through.
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.InvalidInput("cannot fit scaler on empty training data")
	}
	width := len(rows[0])
	mean := make([]float64, width)
	std := make([]float64, width)

	n := float64(len(rows))
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &StandardScaler{Mean: mean, Std: std}, nil
}

// Transform maps a raw vector into scaled space. A width mismatch is a fatal
// version-skew error, never coerced.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, errors.FeatureShapeMismatch(len(s.Mean), len(features))
	}
	scaled := make([]float64, len(features))
	for j, v := range features {
		scaled[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return scaled, nil
}

// Width returns the feature count the scaler was fitted on
func (s *StandardScaler) Width() int {
	return len(s.Mean)
}

// TransformAll scales a whole training matrix
func (s *StandardScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
