package ml

import (
	"math"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

const (
	logisticEpochs       = 400
	logisticLearningRate = 0.1
	logisticL2           = 0.001
)

// LogisticRegression is one of the two ensemble base learners: a linear
// model fit by batch gradient descent on scaled features. Fitting has no
// random component, so identical training data yields identical weights.
type LogisticRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// FitLogisticRegression trains on scaled rows with binary labels
func FitLogisticRegression(rows [][]float64, labels []int) (*LogisticRegression, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return nil, errors.InvalidInput("training rows and labels must be non-empty and aligned")
	}

	width := len(rows[0])
	model := &LogisticRegression{Coefficients: make([]float64, width)}
	n := float64(len(rows))

	for epoch := 0; epoch < logisticEpochs; epoch++ {
		gradW := make([]float64, width)
		gradB := 0.0
		for i, row := range rows {
			p := model.proba(row)
			residual := p - float64(labels[i])
			for j, v := range row {
				gradW[j] += residual * v
			}
			gradB += residual
		}
		for j := range model.Coefficients {
			gradW[j] = gradW[j]/n + logisticL2*model.Coefficients[j]
			model.Coefficients[j] -= logisticLearningRate * gradW[j]
		}
		model.Intercept -= logisticLearningRate * gradB / n
	}

	return model, nil
}

func (m *LogisticRegression) proba(scaled []float64) float64 {
	z := m.Intercept
	for j, w := range m.Coefficients {
		z += w * scaled[j]
	}
	return sigmoid(z)
}

// PredictProba returns the bias probability for a scaled vector
func (m *LogisticRegression) PredictProba(scaled []float64) (float64, error) {
	if len(scaled) != len(m.Coefficients) {
		return 0, errors.FeatureShapeMismatch(len(m.Coefficients), len(scaled))
	}
	return m.proba(scaled), nil
}

// Width returns the feature count the model was trained on
func (m *LogisticRegression) Width() int {
	return len(m.Coefficients)
}

func sigmoid(z float64) float64 {
	// guard exp overflow on extreme logits
	if z > 35 {
		return 1
	}
	if z < -35 {
		return 0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
