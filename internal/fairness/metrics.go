// Package fairness computes the model-free fairness signals: the three
// interpretable ratios, the chi-square distribution tests, and the composite
// fairness score. Everything here is a pure function of its inputs so the
// metrics stay auditable even when the ML models are retrained or unavailable.
package fairness

import (
	"math"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

// MetricCalculator computes the three fairness ratios directly from a cohort
type MetricCalculator struct {
	referenceAgeSpan float64
}

// NewMetricCalculator creates a calculator using the policy's reference age span
func NewMetricCalculator(p policy.Policy) *MetricCalculator {
	return &MetricCalculator{referenceAgeSpan: p.ReferenceAgeSpan}
}

// Compute derives the fairness ratios. All three are bounded in [0,1] and
// monotonically increasing with balance. Zero denominators follow the fixed
// conventions below, never NaN.
func (c *MetricCalculator) Compute(record *cohort.Record) assessment.FairnessMetrics {
	return assessment.FairnessMetrics{
		DemographicParity:     demographicParity(record),
		DisparateImpactRatio:  disparateImpact(record),
		EqualityOfOpportunity: c.ageCoverage(record),
	}
}

// demographicParity is 1 - |male share - female share|
func demographicParity(record *cohort.Record) float64 {
	shares := record.GenderShares()
	return clamp01(1.0 - math.Abs(shares[cohort.GenderMale]-shares[cohort.GenderFemale]))
}

// disparateImpact is min/max over the observed ethnicity shares. When every
// participant shares one ethnicity the ratio is defined as 1.0, not 0/0.
func disparateImpact(record *cohort.Record) float64 {
	observed := record.ObservedEthnicityShares()
	if len(observed) <= 1 {
		return 1.0
	}
	min, max := observed[0], observed[0]
	for _, s := range observed[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == 0 {
		return 1.0
	}
	return clamp01(min / max)
}

// ageCoverage maps the cohort age range against the reference span treated
// as fully inclusive
func (c *MetricCalculator) ageCoverage(record *cohort.Record) float64 {
	return math.Min(record.AgeRange()/c.referenceAgeSpan, 1.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
