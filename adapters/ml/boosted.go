package ml

import (
	"math"
	"sort"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

const (
	boostRounds         = 60
	boostLearningRate   = 0.2
	boostRegularization = 1.0
	boostCandidateCuts  = 15
)

// Stump is a depth-1 regression tree contributing to the boosted ensemble
type Stump struct {
	Feature    int     `json:"feature"`
	Threshold  float64 `json:"threshold"`
	LeftValue  float64 `json:"left"`
	RightValue float64 `json:"right"`
}

// GradientBoostedStumps is the second ensemble base learner: gradient
// boosting on logistic loss with depth-1 trees and Newton leaf values.
// Split candidates come from feature quantiles, so fitting is deterministic.
type GradientBoostedStumps struct {
	BasePrediction float64 `json:"base"`
	LearningRate   float64 `json:"learning_rate"`
	Stumps         []Stump `json:"stumps"`
	NumFeatures    int     `json:"num_features"`
}

// FitGradientBoostedStumps trains on scaled rows with binary labels
func FitGradientBoostedStumps(rows [][]float64, labels []int) (*GradientBoostedStumps, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return nil, errors.InvalidInput("training rows and labels must be non-empty and aligned")
	}

	n := len(rows)
	width := len(rows[0])

	positives := 0
	for _, y := range labels {
		positives += y
	}
	prior := (float64(positives) + 1) / (float64(n) + 2)

	model := &GradientBoostedStumps{
		BasePrediction: math.Log(prior / (1 - prior)),
		LearningRate:   boostLearningRate,
		NumFeatures:    width,
	}

	cuts := candidateCuts(rows, width)

	logits := make([]float64, n)
	for i := range logits {
		logits[i] = model.BasePrediction
	}

	for round := 0; round < boostRounds; round++ {
		grad := make([]float64, n)
		hess := make([]float64, n)
		for i := range rows {
			p := sigmoid(logits[i])
			grad[i] = float64(labels[i]) - p
			hess[i] = p * (1 - p)
		}

		stump, ok := bestStump(rows, grad, hess, cuts)
		if !ok {
			break
		}
		model.Stumps = append(model.Stumps, stump)

		for i, row := range rows {
			logits[i] += model.LearningRate * stump.evaluate(row)
		}
	}

	return model, nil
}

// candidateCuts precomputes quantile thresholds per feature
func candidateCuts(rows [][]float64, width int) [][]float64 {
	cuts := make([][]float64, width)
	column := make([]float64, len(rows))
	for f := 0; f < width; f++ {
		for i, row := range rows {
			column[i] = row[f]
		}
		sorted := make([]float64, len(column))
		copy(sorted, column)
		sort.Float64s(sorted)

		seen := map[float64]bool{}
		for c := 1; c <= boostCandidateCuts; c++ {
			v := sorted[len(sorted)*c/(boostCandidateCuts+1)]
			if !seen[v] {
				seen[v] = true
				cuts[f] = append(cuts[f], v)
			}
		}
	}
	return cuts
}

// bestStump scans every feature and candidate threshold for the split with
// the highest gain
func bestStump(rows [][]float64, grad, hess []float64, cuts [][]float64) (Stump, bool) {
	var best Stump
	bestGain := math.Inf(-1)
	found := false

	totalGrad, totalHess := 0.0, 0.0
	for i := range grad {
		totalGrad += grad[i]
		totalHess += hess[i]
	}

	for f, thresholds := range cuts {
		for _, threshold := range thresholds {
			leftGrad, leftHess := 0.0, 0.0
			leftCount := 0
			for i, row := range rows {
				if row[f] < threshold {
					leftGrad += grad[i]
					leftHess += hess[i]
					leftCount++
				}
			}
			if leftCount == 0 || leftCount == len(rows) {
				continue
			}
			rightGrad := totalGrad - leftGrad
			rightHess := totalHess - leftHess

			gain := leftGrad*leftGrad/(leftHess+boostRegularization) +
				rightGrad*rightGrad/(rightHess+boostRegularization)
			if gain > bestGain {
				bestGain = gain
				best = Stump{
					Feature:    f,
					Threshold:  threshold,
					LeftValue:  leftGrad / (leftHess + boostRegularization),
					RightValue: rightGrad / (rightHess + boostRegularization),
				}
				found = true
			}
		}
	}
	return best, found
}

func (s Stump) evaluate(row []float64) float64 {
	if row[s.Feature] < s.Threshold {
		return s.LeftValue
	}
	return s.RightValue
}

// PredictProba returns the bias probability for a scaled vector
func (m *GradientBoostedStumps) PredictProba(scaled []float64) (float64, error) {
	if len(scaled) != m.NumFeatures {
		return 0, errors.FeatureShapeMismatch(m.NumFeatures, len(scaled))
	}
	logit := m.BasePrediction
	for _, s := range m.Stumps {
		logit += m.LearningRate * s.evaluate(scaled)
	}
	return sigmoid(logit), nil
}

// Width returns the feature count the model was trained on
func (m *GradientBoostedStumps) Width() int {
	return m.NumFeatures
}
