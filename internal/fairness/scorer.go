package fairness

import (
	"math"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

// Scorer combines the five fairness signals into one scalar score in [0,1]
// via the policy's fixed weights.
type Scorer struct {
	weights               policy.Weights
	significanceReference float64
}

// NewScorer creates a scorer after revalidating the policy's weight invariant
func NewScorer(p policy.Policy) (*Scorer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		weights:               p.Weights,
		significanceReference: p.SignificanceReference,
	}, nil
}

// Score computes the weighted composite fairness score
func (s *Scorer) Score(
	metrics assessment.FairnessMetrics,
	tests assessment.StatisticalTestResult,
	outlierScore float64,
	biasProbability float64,
) float64 {
	statTerm := (s.pValueTerm(tests.Gender.PValue) + s.pValueTerm(tests.Ethnicity.PValue)) / 2.0

	score := s.weights.DemographicParity*metrics.DemographicParity +
		s.weights.DisparateImpact*metrics.DisparateImpactRatio +
		s.weights.EqualityOfOpportunity*metrics.EqualityOfOpportunity +
		s.weights.StatisticalTests*statTerm +
		s.weights.Outlier*outlierTerm(outlierScore) +
		s.weights.BiasProbability*(1.0-biasProbability)

	return clamp01(score)
}

// pValueTerm maps a p-value into [0,1]: anything at or above the significance
// reference scores full marks, smaller p-values decay linearly.
func (s *Scorer) pValueTerm(p float64) float64 {
	return math.Min(p/s.significanceReference, 1.0)
}

// outlierTerm inverts the normalized anomaly score. Decision-function scores
// sit roughly in [-0.5, 0.5] with negative meaning anomalous; clamping keeps
// the term bounded and monotone in the raw score.
func outlierTerm(score float64) float64 {
	return clamp01(0.5 + score)
}
