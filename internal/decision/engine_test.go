package decision

import (
	"strings"
	"testing"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

func cleanInputs(fairnessScore float64) Inputs {
	return Inputs{
		FairnessScore:   fairnessScore,
		IsOutlier:       false,
		OutlierScore:    0.2,
		BiasProbability: 0.1,
		Metrics: assessment.FairnessMetrics{
			DemographicParity:     0.95,
			DisparateImpactRatio:  0.85,
			EqualityOfOpportunity: 0.9,
		},
		Tests: assessment.StatisticalTestResult{
			Gender:    assessment.ChiSquareResult{Statistic: 1, PValue: 0.4},
			Ethnicity: assessment.ChiSquareResult{Statistic: 2, PValue: 0.3},
		},
	}
}

func TestDecide_Accept(t *testing.T) {
	engine := NewEngine(policy.Default())

	out := engine.Decide(cleanInputs(0.85))
	if out.Verdict != assessment.VerdictAccept {
		t.Fatalf("expected ACCEPT, got %s", out.Verdict)
	}
	if out.RejectionSummary != "" {
		t.Errorf("accepted trials carry no rejection summary, got %q", out.RejectionSummary)
	}
	if len(out.Recommendations) != 1 || out.Recommendations[0] != "Trial meets fairness criteria" {
		t.Errorf("clean accept should get the meets-criteria recommendation, got %v", out.Recommendations)
	}
}

func TestDecide_OutlierBlocksAccept(t *testing.T) {
	engine := NewEngine(policy.Default())

	in := cleanInputs(0.85)
	in.IsOutlier = true
	in.OutlierScore = -0.12

	out := engine.Decide(in)
	if out.Verdict != assessment.VerdictReview {
		t.Fatalf("outlier with a high score should fall to REVIEW, got %s", out.Verdict)
	}
	found := false
	for _, rec := range out.Recommendations {
		if rec == "Trial data shows unusual patterns - manual review recommended" {
			found = true
		}
	}
	if !found {
		t.Errorf("outlier recommendation missing from %v", out.Recommendations)
	}
}

func TestDecide_ReviewBand(t *testing.T) {
	engine := NewEngine(policy.Default())

	out := engine.Decide(cleanInputs(0.70))
	if out.Verdict != assessment.VerdictReview {
		t.Fatalf("expected REVIEW at score 0.70, got %s", out.Verdict)
	}
	if !out.Verdict.LedgerEligible() {
		t.Error("REVIEW must remain ledger eligible")
	}
}

func TestDecide_HighBiasProbabilityRejects(t *testing.T) {
	engine := NewEngine(policy.Default())

	in := cleanInputs(0.85)
	in.BiasProbability = 0.6

	out := engine.Decide(in)
	if out.Verdict != assessment.VerdictReject {
		t.Fatalf("bias probability 0.6 must reject even at a high score, got %s", out.Verdict)
	}
	if !strings.Contains(out.RejectionSummary, "high bias probability (60%)") {
		t.Errorf("summary should name the bias probability, got %q", out.RejectionSummary)
	}
	if out.Verdict.LedgerEligible() {
		t.Error("REJECT must not be ledger eligible")
	}
}

func TestDecide_LowScoreRejectsWithSummary(t *testing.T) {
	engine := NewEngine(policy.Default())

	in := Inputs{
		FairnessScore:   0.30,
		IsOutlier:       true,
		OutlierScore:    -0.2,
		BiasProbability: 0.7,
		Metrics: assessment.FairnessMetrics{
			DemographicParity:     0.2,
			DisparateImpactRatio:  0.1,
			EqualityOfOpportunity: 0.3,
		},
		Tests: assessment.StatisticalTestResult{
			Gender:    assessment.ChiSquareResult{Statistic: 81, PValue: 0.0001},
			Ethnicity: assessment.ChiSquareResult{Statistic: 400, PValue: 0.0001},
		},
	}

	out := engine.Decide(in)
	if out.Verdict != assessment.VerdictReject {
		t.Fatalf("expected REJECT, got %s", out.Verdict)
	}
	if !strings.HasPrefix(out.RejectionSummary, "Trial rejected due to: ") {
		t.Errorf("unexpected summary prefix: %q", out.RejectionSummary)
	}

	// Issues appear in metric-priority order
	summary := out.RejectionSummary
	parityIdx := strings.Index(summary, "poor gender balance")
	ethnicIdx := strings.Index(summary, "ethnic imbalance")
	ageIdx := strings.Index(summary, "narrow age coverage")
	if parityIdx == -1 || ethnicIdx == -1 || ageIdx == -1 {
		t.Fatalf("summary missing expected issues: %q", summary)
	}
	if !(parityIdx < ethnicIdx && ethnicIdx < ageIdx) {
		t.Errorf("issues out of priority order: %q", summary)
	}
	if !strings.Contains(summary, "Recommendations: ") {
		t.Errorf("summary should embed the recommendations: %q", summary)
	}
}

func TestDecide_RecommendationPriorityOrder(t *testing.T) {
	engine := NewEngine(policy.Default())

	in := cleanInputs(0.85)
	in.Metrics.DemographicParity = 0.5
	in.Metrics.DisparateImpactRatio = 0.4

	out := engine.Decide(in)
	if len(out.Recommendations) < 2 {
		t.Fatalf("expected two recommendations, got %v", out.Recommendations)
	}
	if out.Recommendations[0] != "Improve gender balance in participant recruitment" {
		t.Errorf("gender balance must come first, got %q", out.Recommendations[0])
	}
	if out.Recommendations[1] != "Ensure better ethnic diversity representation" {
		t.Errorf("ethnic diversity must come second, got %q", out.Recommendations[1])
	}
}

func TestDecide_ScoreBoundaryIsInclusive(t *testing.T) {
	engine := NewEngine(policy.Default())

	if out := engine.Decide(cleanInputs(0.80)); out.Verdict != assessment.VerdictAccept {
		t.Errorf("score exactly at the accept threshold must ACCEPT, got %s", out.Verdict)
	}
	if out := engine.Decide(cleanInputs(0.60)); out.Verdict != assessment.VerdictReview {
		t.Errorf("score exactly at the review threshold must REVIEW, got %s", out.Verdict)
	}
	if out := engine.Decide(cleanInputs(0.5999)); out.Verdict != assessment.VerdictReject {
		t.Errorf("score just below the review threshold must REJECT, got %s", out.Verdict)
	}
}
