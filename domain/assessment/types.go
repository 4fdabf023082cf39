package assessment

import (
	"fmt"

	"github.com/VruddithShetty/TrialEquity/domain/core"
)

// Verdict is the terminal classification gating ledger write eligibility
type Verdict string

const (
	VerdictAccept Verdict = "ACCEPT"
	VerdictReview Verdict = "REVIEW"
	VerdictReject Verdict = "REJECT"
)

// LedgerEligible reports whether a verdict permits committing trial metadata
// to the ledger. Only ACCEPT and REVIEW may proceed.
func (v Verdict) LedgerEligible() bool {
	return v == VerdictAccept || v == VerdictReview
}

// FeatureVector is a fixed-length ordered sequence of feature values with a
// parallel ordered sequence of feature names. The two must always have equal
// length and matching order; Validate enforces the pairing.
type FeatureVector struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

// Len returns the vector width
func (fv FeatureVector) Len() int {
	return len(fv.Values)
}

// Validate checks the name/value pairing invariant
func (fv FeatureVector) Validate() error {
	if len(fv.Names) != len(fv.Values) {
		return fmt.Errorf("feature vector has %d values but %d names", len(fv.Values), len(fv.Names))
	}
	return nil
}

// FairnessMetrics holds the three model-free fairness ratios. All three are
// bounded in [0,1]; higher is always more balanced.
type FairnessMetrics struct {
	DemographicParity     float64 `json:"demographic_parity"`
	DisparateImpactRatio  float64 `json:"disparate_impact_ratio"`
	EqualityOfOpportunity float64 `json:"equality_of_opportunity"`
}

// ChiSquareResult is one goodness-of-fit test outcome
type ChiSquareResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// StatisticalTestResult holds per-attribute chi-square outcomes
type StatisticalTestResult struct {
	Gender    ChiSquareResult `json:"gender"`
	Ethnicity ChiSquareResult `json:"ethnicity"`
}

// EligibilityRuleResult reports the mandatory eligibility rule checks that run
// alongside an assessment. Rules inform the operator but never gate the verdict.
type EligibilityRuleResult struct {
	Status      string   `json:"status"`
	RulesPassed []string `json:"rules_passed"`
	RulesFailed []string `json:"rules_failed"`
}

// BiasAssessment is the terminal, immutable output of one assessment run.
// A re-run produces a new BiasAssessment; existing records are never updated.
type BiasAssessment struct {
	ID      core.AssessmentID `json:"id"`
	TrialID core.TrialID      `json:"trial_id"`

	Features FeatureVector `json:"features"`

	OutlierScore    float64 `json:"outlier_score"`
	IsOutlier       bool    `json:"is_outlier"`
	BiasProbability float64 `json:"bias_probability"`

	Fairness FairnessMetrics       `json:"fairness_metrics"`
	Tests    StatisticalTestResult `json:"statistical_tests"`

	FairnessScore float64 `json:"fairness_score"`
	Verdict       Verdict `json:"verdict"`

	Recommendations  []string `json:"recommendations"`
	RejectionSummary string   `json:"rejection_summary,omitempty"`

	Eligibility EligibilityRuleResult `json:"eligibility"`

	ModelVersion  string          `json:"model_version"`
	ModelAccuracy float64         `json:"model_accuracy"`
	UploadHash    core.UploadHash `json:"upload_hash,omitempty"`
	AssessedAt    core.Timestamp  `json:"assessed_at"`
}
