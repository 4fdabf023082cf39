package fairness

import (
	"math"
	"testing"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

func perfectInputs() (assessment.FairnessMetrics, assessment.StatisticalTestResult) {
	metrics := assessment.FairnessMetrics{
		DemographicParity:     1,
		DisparateImpactRatio:  1,
		EqualityOfOpportunity: 1,
	}
	tests := assessment.StatisticalTestResult{
		Gender:    assessment.ChiSquareResult{Statistic: 0, PValue: 1},
		Ethnicity: assessment.ChiSquareResult{Statistic: 0, PValue: 1},
	}
	return metrics, tests
}

func TestScorer_PerfectInputsScoreOne(t *testing.T) {
	scorer, err := NewScorer(policy.Default())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	metrics, tests := perfectInputs()
	// An outlier score of +0.5 saturates the outlier term.
	got := scorer.Score(metrics, tests, 0.5, 0.0)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("perfect inputs should score 1.0, got %f", got)
	}
}

func TestScorer_WorstInputsScoreZero(t *testing.T) {
	scorer, err := NewScorer(policy.Default())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	metrics := assessment.FairnessMetrics{}
	tests := assessment.StatisticalTestResult{
		Gender:    assessment.ChiSquareResult{Statistic: 100, PValue: 0},
		Ethnicity: assessment.ChiSquareResult{Statistic: 100, PValue: 0},
	}
	got := scorer.Score(metrics, tests, -0.5, 1.0)
	if got != 0 {
		t.Errorf("worst inputs should score 0, got %f", got)
	}
}

func TestScorer_MonotoneInParity(t *testing.T) {
	scorer, err := NewScorer(policy.Default())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	metrics, tests := perfectInputs()
	high := scorer.Score(metrics, tests, 0.1, 0.2)

	metrics.DemographicParity = 0.4
	low := scorer.Score(metrics, tests, 0.1, 0.2)

	if low >= high {
		t.Errorf("lowering parity must lower the score: %f >= %f", low, high)
	}
}

func TestScorer_PValueTermSaturatesAtReference(t *testing.T) {
	scorer, err := NewScorer(policy.Default())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	metrics, tests := perfectInputs()
	base := scorer.Score(metrics, tests, 0.5, 0.0)

	// Any p-value at or above 0.05 contributes identically
	tests.Gender.PValue = 0.05
	tests.Ethnicity.PValue = 0.60
	got := scorer.Score(metrics, tests, 0.5, 0.0)
	if math.Abs(got-base) > 1e-9 {
		t.Errorf("p-values above the reference must saturate: got %f, want %f", got, base)
	}
}

func TestNewScorer_RejectsBrokenWeights(t *testing.T) {
	p := policy.Default()
	p.Weights.DemographicParity = 0.5 // sum now exceeds 1

	if _, err := NewScorer(p); err == nil {
		t.Fatal("expected error for weights not summing to 1.0")
	}
}

func TestScorer_AlwaysBounded(t *testing.T) {
	scorer, err := NewScorer(policy.Default())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	metrics, tests := perfectInputs()
	for _, outlier := range []float64{-2, -0.5, 0, 0.5, 2} {
		for _, bias := range []float64{0, 0.5, 1} {
			got := scorer.Score(metrics, tests, outlier, bias)
			if got < 0 || got > 1 {
				t.Errorf("score out of [0,1] at outlier=%f bias=%f: %f", outlier, bias, got)
			}
		}
	}
}
