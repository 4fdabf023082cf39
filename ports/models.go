package ports

import (
	"time"
)

// Scaler standardizes a raw feature vector into model space.
// Implementations must return a FEATURE_SHAPE_MISMATCH error when the input
// width differs from the width the scaler was fitted on.
type Scaler interface {
	// Transform maps a raw feature vector into scaled model space
	Transform(features []float64) ([]float64, error)

	// Width returns the feature count the scaler was fitted on
	Width() int
}

// Classifier is an opaque trained bias classifier. The probability output,
// not a hard label, is the contract; thresholding happens in the decision
// engine only.
type Classifier interface {
	// PredictProba returns the bias probability in [0,1] for a scaled vector
	PredictProba(scaled []float64) (float64, error)

	// Width returns the feature count the classifier was trained on
	Width() int
}

// OutlierModel is an opaque trained anomaly detector. Score follows the
// decision-function convention fixed at training time: more negative means
// more anomalous, scores below zero are outliers.
type OutlierModel interface {
	// Score returns the raw anomaly score for a scaled vector
	Score(scaled []float64) (float64, error)

	// Width returns the feature count the model was trained on
	Width() int
}

// ModelBundle holds the trained artifacts as one consistent unit. Bundles are
// immutable once constructed; retraining builds a new bundle and replaces the
// old one atomically.
type ModelBundle struct {
	Classifier   Classifier
	OutlierModel OutlierModel
	Scaler       Scaler

	// FeatureNames is the ordered manifest; its length must equal the width
	// of every model in the bundle.
	FeatureNames []string

	// Accuracy is the held-out accuracy recorded at training time
	Accuracy  float64
	Version   string
	TrainedAt time.Time
}

// Width returns the feature count the bundle operates on
func (b *ModelBundle) Width() int {
	return len(b.FeatureNames)
}
