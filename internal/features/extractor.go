// Package features derives the fixed-length numeric feature vector a cohort
// is assessed on. Extraction is deterministic: the same cohort always yields
// a bit-identical vector.
package features

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/internal/fairness"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

// LegacyFeatureNames is the 10-feature manifest of the first model generation.
// Bundles trained against it are still loadable; presenting them with a
// production vector fails with a shape mismatch rather than silent coercion.
var LegacyFeatureNames = []string{
	"age_mean", "age_std", "age_range",
	"gender_male", "gender_female",
	"ethnicity_white", "ethnicity_black", "ethnicity_asian",
	"sample_size_norm", "eligibility_mean",
}

// ProductionFeatureNames is the current 18-feature manifest: the legacy ten
// extended by shape, balance, diversity and sample-size terms plus the three
// fairness ratios.
var ProductionFeatureNames = []string{
	"age_mean", "age_std", "age_range",
	"gender_male", "gender_female",
	"ethnicity_white", "ethnicity_black", "ethnicity_asian",
	"sample_size_norm", "eligibility_mean",
	"age_skewness", "gender_balance", "ethnicity_diversity",
	"sample_size_log", "eligibility_var",
	"demographic_parity", "disparate_impact_ratio", "equality_of_opportunity",
}

const (
	// sampleSizeScale is the cohort size mapped to a normalized count of 1.0
	sampleSizeScale = 1000.0
	// sampleSizeLogScale keeps the log-count feature in [0,1] for cohorts
	// up to ten thousand participants
	sampleSizeLogScale = 10000.0
)

// Extraction bundles the feature vector with the fairness sub-results it
// embeds. The ratios are computed once here and reused verbatim in the final
// assessment, guaranteeing numerical identity between the feature values and
// the reported metrics.
type Extraction struct {
	Vector   assessment.FeatureVector
	Fairness assessment.FairnessMetrics
	Tests    assessment.StatisticalTestResult
}

// Extractor turns a cohort record into the production feature vector
type Extractor struct {
	metrics *fairness.MetricCalculator
	tests   *fairness.TestRunner
}

// NewExtractor creates an extractor sharing the fairness layer's calculators
func NewExtractor(p policy.Policy) *Extractor {
	return &Extractor{
		metrics: fairness.NewMetricCalculator(p),
		tests:   fairness.NewTestRunner(),
	}
}

// Extract computes the production feature vector. It never fails on a
// non-empty cohort; an empty cohort is an INSUFFICIENT_DATA error.
func (e *Extractor) Extract(record *cohort.Record) (*Extraction, error) {
	if record == nil || record.IsEmpty() {
		return nil, errors.InsufficientData("cohort has no participants")
	}

	ages := record.Ages()
	ageMean, _ := stats.Mean(ages)
	ageStd, _ := stats.StandardDeviation(ages)
	ageRange := record.AgeRange()

	genderShares := record.GenderShares()
	male := genderShares[cohort.GenderMale]
	female := genderShares[cohort.GenderFemale]

	ethnicityShares := record.EthnicityShares()

	eligibility := record.EligibilityScores()
	eligibilityMean, _ := stats.Mean(eligibility)
	eligibilityVar, _ := stats.PopulationVariance(eligibility)

	n := float64(record.Count())

	metrics := e.metrics.Compute(record)
	tests := e.tests.Run(record)

	values := []float64{
		ageMean,
		ageStd,
		ageRange,
		male,
		female,
		ethnicityShares[cohort.EthnicityWhite],
		ethnicityShares[cohort.EthnicityBlack],
		ethnicityShares[cohort.EthnicityAsian],
		math.Min(n/sampleSizeScale, 1.0),
		eligibilityMean,
		skewness(ages, ageMean, ageStd),
		math.Abs(male - female),
		diversityIndex(ethnicityShares),
		math.Min(math.Log1p(n)/math.Log1p(sampleSizeLogScale), 1.0),
		eligibilityVar,
		metrics.DemographicParity,
		metrics.DisparateImpactRatio,
		metrics.EqualityOfOpportunity,
	}

	vector := assessment.FeatureVector{
		Names:  ProductionFeatureNames,
		Values: values,
	}
	if err := vector.Validate(); err != nil {
		return nil, errors.Wrap(err, "feature manifest pairing violated")
	}

	return &Extraction{Vector: vector, Fairness: metrics, Tests: tests}, nil
}

// skewness computes sample skewness using the adjusted Fisher-Pearson
// coefficient; 0 for degenerate inputs rather than NaN.
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skew := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skew * correction
}

// diversityIndex is 1 minus the Herfindahl concentration over ethnicity
// shares: 0 for a single-ethnicity cohort, approaching 1 - 1/k for a
// perfectly even spread over k categories.
func diversityIndex(shares map[cohort.Ethnicity]float64) float64 {
	concentration := 0.0
	for _, s := range shares {
		concentration += s * s
	}
	return 1.0 - concentration
}
