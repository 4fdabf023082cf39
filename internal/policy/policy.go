// Package policy defines the regulatory decision policy: fairness weights,
// verdict thresholds, and reference constants. Every value is named and
// externally overridable so regulatory changes never require retraining.
package policy

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

// Weights is the fixed-weight linear combination producing the composite
// fairness score. The six weights must sum to exactly 1.0.
type Weights struct {
	DemographicParity     float64 `yaml:"demographic_parity"`
	DisparateImpact       float64 `yaml:"disparate_impact"`
	EqualityOfOpportunity float64 `yaml:"equality_of_opportunity"`
	StatisticalTests      float64 `yaml:"statistical_tests"`
	Outlier               float64 `yaml:"outlier"`
	BiasProbability       float64 `yaml:"bias_probability"`
}

// Sum returns the total weight mass
func (w Weights) Sum() float64 {
	return w.DemographicParity + w.DisparateImpact + w.EqualityOfOpportunity +
		w.StatisticalTests + w.Outlier + w.BiasProbability
}

// Thresholds holds the verdict boundaries. ACCEPT conditions are evaluated
// first, then REVIEW; order matters because the REVIEW band also covers
// values that must ACCEPT.
type Thresholds struct {
	AcceptFairnessScore   float64 `yaml:"accept_fairness_score"`
	AcceptBiasProbability float64 `yaml:"accept_bias_probability"`
	ReviewFairnessScore   float64 `yaml:"review_fairness_score"`
	ReviewBiasProbability float64 `yaml:"review_bias_probability"`
}

// Recommendation thresholds: each sub-metric has its own bar below which a
// recruitment recommendation is emitted.
type RecommendationThresholds struct {
	DemographicParity     float64 `yaml:"demographic_parity"`
	DisparateImpact       float64 `yaml:"disparate_impact"`
	EqualityOfOpportunity float64 `yaml:"equality_of_opportunity"`
	PValue                float64 `yaml:"p_value"`
	BiasProbability       float64 `yaml:"bias_probability"`
}

// Policy is one named, complete decision configuration
type Policy struct {
	Name       string     `yaml:"name"`
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`

	Recommend RecommendationThresholds `yaml:"recommend"`

	// ReferenceAgeSpan is the age spread, in years, treated as fully
	// inclusive when scoring equality of opportunity.
	ReferenceAgeSpan float64 `yaml:"reference_age_span"`

	// SignificanceReference scales p-values into the statistical-test term:
	// min(p / SignificanceReference, 1.0).
	SignificanceReference float64 `yaml:"significance_reference"`

	// Contamination is the expected outlier fraction the anomaly model is
	// trained with.
	Contamination float64 `yaml:"contamination"`
}

// weightTolerance bounds float accumulation error when checking the sum
const weightTolerance = 1e-9

// Default returns the standard policy. Historical revisions carried several
// inconsistent threshold sets; this is the single named set the engine ships
// with, and a policy file can override any value.
func Default() Policy {
	return Policy{
		Name: "standard-v1",
		Weights: Weights{
			DemographicParity:     0.25,
			DisparateImpact:       0.25,
			EqualityOfOpportunity: 0.20,
			StatisticalTests:      0.15,
			Outlier:               0.10,
			BiasProbability:       0.05,
		},
		Thresholds: Thresholds{
			AcceptFairnessScore:   0.80,
			AcceptBiasProbability: 0.30,
			ReviewFairnessScore:   0.60,
			ReviewBiasProbability: 0.50,
		},
		Recommend: RecommendationThresholds{
			DemographicParity:     0.70,
			DisparateImpact:       0.60,
			EqualityOfOpportunity: 0.60,
			PValue:                0.05,
			BiasProbability:       0.50,
		},
		ReferenceAgeSpan:      50,
		SignificanceReference: 0.05,
		Contamination:         0.10,
	}
}

// Load reads a policy file and overlays it on the default policy, so a file
// only needs to name the values it changes.
func Load(path string) (Policy, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, errors.Wrapf(err, "failed to read policy file %s", path)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, errors.Wrapf(err, "failed to parse policy file %s", path)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks the policy invariants. Called once at load time, never per
// assessment.
func (p Policy) Validate() error {
	if math.Abs(p.Weights.Sum()-1.0) > weightTolerance {
		return errors.ConfigInvalid("fairness weights must sum to 1.0")
	}
	if p.ReferenceAgeSpan <= 0 {
		return errors.ConfigInvalid("reference age span must be positive")
	}
	if p.SignificanceReference <= 0 || p.SignificanceReference > 1 {
		return errors.ConfigInvalid("significance reference must be in (0,1]")
	}
	if p.Contamination <= 0 || p.Contamination >= 0.5 {
		return errors.ConfigInvalid("contamination must be in (0,0.5)")
	}
	if p.Thresholds.AcceptFairnessScore < p.Thresholds.ReviewFairnessScore {
		return errors.ConfigInvalid("accept fairness threshold must not be below review threshold")
	}
	return nil
}
