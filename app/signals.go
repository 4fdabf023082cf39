package app

import (
	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// OutlierScorer wraps the bundle's anomaly model behind the scaler. For a
// fixed bundle and input the result is fully deterministic.
type OutlierScorer struct {
	bundle *ports.ModelBundle
}

// NewOutlierScorer creates a scorer bound to one bundle version
func NewOutlierScorer(bundle *ports.ModelBundle) *OutlierScorer {
	return &OutlierScorer{bundle: bundle}
}

// Score returns the model's binary outlier call and its raw decision score.
// A width mismatch between the feature vector and the trained scaler is a
// fatal version-skew error.
func (s *OutlierScorer) Score(fv assessment.FeatureVector) (isOutlier bool, score float64, err error) {
	scaled, err := s.bundle.Scaler.Transform(fv.Values)
	if err != nil {
		return false, 0, err
	}
	score, err = s.bundle.OutlierModel.Score(scaled)
	if err != nil {
		return false, 0, err
	}
	return score < 0, score, nil
}

// BiasClassifier wraps the bundle's classifier ensemble behind the scaler.
// It yields a probability, never a hard label; thresholding is the decision
// engine's job.
type BiasClassifier struct {
	bundle *ports.ModelBundle
}

// NewBiasClassifier creates a classifier bound to one bundle version
func NewBiasClassifier(bundle *ports.ModelBundle) *BiasClassifier {
	return &BiasClassifier{bundle: bundle}
}

// Predict returns the ensemble bias probability in [0,1]
func (c *BiasClassifier) Predict(fv assessment.FeatureVector) (float64, error) {
	scaled, err := c.bundle.Scaler.Transform(fv.Values)
	if err != nil {
		return 0, err
	}
	return c.bundle.Classifier.PredictProba(scaled)
}
