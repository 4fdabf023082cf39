package ml

import (
	"math"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// DefaultEnsembleWeights are the soft-vote weights chosen at training time
// and frozen into the bundle; they are never re-tuned per request.
var DefaultEnsembleWeights = []float64{0.66, 0.34}

// SoftVotingEnsemble averages member probabilities under fixed weights.
// Alternative ensembles (more members, different weights) plug in behind the
// same Classifier interface without touching downstream components.
type SoftVotingEnsemble struct {
	members []ports.Classifier
	weights []float64
}

// NewSoftVotingEnsemble validates member/weight alignment once at
// construction
func NewSoftVotingEnsemble(members []ports.Classifier, weights []float64) (*SoftVotingEnsemble, error) {
	if len(members) == 0 {
		return nil, errors.InvalidInput("ensemble requires at least one member")
	}
	if len(members) != len(weights) {
		return nil, errors.InvalidInput("ensemble members and weights must align")
	}
	sum := 0.0
	for _, w := range weights {
		if w <= 0 {
			return nil, errors.InvalidInput("ensemble weights must be positive")
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, errors.InvalidInput("ensemble weights must sum to 1.0")
	}
	width := members[0].Width()
	for _, m := range members[1:] {
		if m.Width() != width {
			return nil, errors.InvalidInput("ensemble members disagree on feature width")
		}
	}
	return &SoftVotingEnsemble{members: members, weights: weights}, nil
}

// PredictProba returns the weighted average of member probabilities
func (e *SoftVotingEnsemble) PredictProba(scaled []float64) (float64, error) {
	p := 0.0
	for i, m := range e.members {
		mp, err := m.PredictProba(scaled)
		if err != nil {
			return 0, err
		}
		p += e.weights[i] * mp
	}
	return p, nil
}

// Width returns the feature count the ensemble operates on
func (e *SoftVotingEnsemble) Width() int {
	return e.members[0].Width()
}

// Members exposes the base learners read-only, for serialization and
// explainability adapters
func (e *SoftVotingEnsemble) Members() []ports.Classifier {
	return e.members
}

// Weights exposes the frozen vote weights read-only
func (e *SoftVotingEnsemble) Weights() []float64 {
	return e.weights
}
