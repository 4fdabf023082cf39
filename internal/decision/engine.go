// Package decision maps the combined fairness signals to the terminal
// ACCEPT/REVIEW/REJECT verdict with a human-readable rationale. Each
// evaluation is stateless and must never fail for well-formed inputs.
package decision

import (
	"fmt"
	"strings"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

// Inputs carries everything the verdict depends on
type Inputs struct {
	FairnessScore   float64
	IsOutlier       bool
	OutlierScore    float64
	BiasProbability float64
	Metrics         assessment.FairnessMetrics
	Tests           assessment.StatisticalTestResult
}

// Outcome is the verdict plus its rationale
type Outcome struct {
	Verdict          assessment.Verdict
	Recommendations  []string
	RejectionSummary string
}

// Engine evaluates the decision policy
type Engine struct {
	policy policy.Policy
}

// NewEngine creates a decision engine for the given policy
func NewEngine(p policy.Policy) *Engine {
	return &Engine{policy: p}
}

// Decide evaluates ACCEPT first, then REVIEW, else REJECT. The order is
// load-bearing: the REVIEW band also covers scores that must ACCEPT.
func (e *Engine) Decide(in Inputs) Outcome {
	t := e.policy.Thresholds

	verdict := assessment.VerdictReject
	switch {
	case in.FairnessScore >= t.AcceptFairnessScore &&
		!in.IsOutlier &&
		in.BiasProbability < t.AcceptBiasProbability:
		verdict = assessment.VerdictAccept
	case in.FairnessScore >= t.ReviewFairnessScore &&
		in.BiasProbability < t.ReviewBiasProbability:
		verdict = assessment.VerdictReview
	}

	out := Outcome{
		Verdict:         verdict,
		Recommendations: e.recommendations(in),
	}
	if verdict == assessment.VerdictReject {
		out.RejectionSummary = e.rejectionSummary(in, out.Recommendations)
	}
	return out
}

// recommendations lists the sub-metrics that fell short of their own bars,
// in metric-priority order.
func (e *Engine) recommendations(in Inputs) []string {
	r := e.policy.Recommend
	var recs []string

	if in.Metrics.DemographicParity < r.DemographicParity {
		recs = append(recs, "Improve gender balance in participant recruitment")
	}
	if in.Metrics.DisparateImpactRatio < r.DisparateImpact {
		recs = append(recs, "Ensure better ethnic diversity representation")
	}
	if in.Metrics.EqualityOfOpportunity < r.EqualityOfOpportunity {
		recs = append(recs, "Expand age range to improve inclusivity")
	}
	if in.Tests.Gender.PValue < r.PValue {
		recs = append(recs, "Gender distribution shows significant bias - review recruitment strategy")
	}
	if in.Tests.Ethnicity.PValue < r.PValue {
		recs = append(recs, "Ethnicity distribution shows significant bias - improve outreach and inclusion")
	}
	if in.IsOutlier {
		recs = append(recs, "Trial data shows unusual patterns - manual review recommended")
	}
	if in.BiasProbability > r.BiasProbability {
		recs = append(recs, "High probability of bias detected - consider redesigning trial")
	}

	if len(recs) == 0 {
		recs = append(recs, "Trial meets fairness criteria")
	}
	return recs
}

// rejectionSummary enumerates every failing metric in priority order:
// demographic parity, disparate impact, equality of opportunity, statistical
// significance, outlier, bias probability.
func (e *Engine) rejectionSummary(in Inputs, recs []string) string {
	r := e.policy.Recommend
	var issues []string

	if in.Metrics.DemographicParity < r.DemographicParity {
		issues = append(issues, fmt.Sprintf("poor gender balance (%.2f)", in.Metrics.DemographicParity))
	}
	if in.Metrics.DisparateImpactRatio < r.DisparateImpact {
		issues = append(issues, fmt.Sprintf("ethnic imbalance (%.2f)", in.Metrics.DisparateImpactRatio))
	}
	if in.Metrics.EqualityOfOpportunity < r.EqualityOfOpportunity {
		issues = append(issues, fmt.Sprintf("narrow age coverage (%.2f)", in.Metrics.EqualityOfOpportunity))
	}
	if in.Tests.Gender.PValue < r.PValue || in.Tests.Ethnicity.PValue < r.PValue {
		issues = append(issues, fmt.Sprintf("statistically significant distribution skew (p=%.3f/%.3f)",
			in.Tests.Gender.PValue, in.Tests.Ethnicity.PValue))
	}
	if in.IsOutlier {
		issues = append(issues, fmt.Sprintf("anomalous cohort profile (score %.3f)", in.OutlierScore))
	}
	if in.BiasProbability >= e.policy.Thresholds.ReviewBiasProbability {
		issues = append(issues, fmt.Sprintf("high bias probability (%.0f%%)", in.BiasProbability*100))
	}

	if len(issues) == 0 {
		issues = append(issues, fmt.Sprintf("overall fairness score too low (%.2f)", in.FairnessScore))
	}

	return fmt.Sprintf("Trial rejected due to: %s. Recommendations: %s",
		strings.Join(issues, ", "), strings.Join(recs, "; "))
}
