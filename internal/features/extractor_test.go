package features

import (
	"math"
	"testing"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
)

func sampleCohort(n int) *cohort.Record {
	participants := make([]cohort.Participant, n)
	for i := range participants {
		gender := cohort.GenderMale
		if i%2 == 1 {
			gender = cohort.GenderFemale
		}
		eth := cohort.Ethnicities[i%len(cohort.Ethnicities)]
		participants[i] = cohort.Participant{
			Age:              20 + float64(i%50),
			Gender:           gender,
			Ethnicity:        eth,
			EligibilityScore: 0.7 + 0.005*float64(i%40),
		}
	}
	return &cohort.Record{TrialID: "trial-extract", Participants: participants}
}

func featureIndex(t *testing.T, name string) int {
	t.Helper()
	for i, n := range ProductionFeatureNames {
		if n == name {
			return i
		}
	}
	t.Fatalf("feature %s not in manifest", name)
	return -1
}

func TestExtract_ProductionManifest(t *testing.T) {
	extractor := NewExtractor(policy.Default())

	result, err := extractor.Extract(sampleCohort(100))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(result.Vector.Values) != 18 {
		t.Fatalf("expected 18 features, got %d", len(result.Vector.Values))
	}
	if err := result.Vector.Validate(); err != nil {
		t.Fatalf("name/value pairing violated: %v", err)
	}
	for i, name := range ProductionFeatureNames {
		if result.Vector.Names[i] != name {
			t.Errorf("feature %d: got name %s, want %s", i, result.Vector.Names[i], name)
		}
	}
	for i, v := range result.Vector.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("feature %s is not finite: %f", result.Vector.Names[i], v)
		}
	}
}

func TestExtract_LegacyManifestIsPrefix(t *testing.T) {
	if len(LegacyFeatureNames) != 10 {
		t.Fatalf("legacy manifest should have 10 names, got %d", len(LegacyFeatureNames))
	}
	for i, name := range LegacyFeatureNames {
		if ProductionFeatureNames[i] != name {
			t.Errorf("legacy name %d (%s) is not a prefix of the production manifest", i, name)
		}
	}
}

func TestExtract_EmptyCohort(t *testing.T) {
	extractor := NewExtractor(policy.Default())

	_, err := extractor.Extract(&cohort.Record{TrialID: "trial-empty"})
	if err == nil {
		t.Fatal("expected error for empty cohort")
	}
	if !errors.HasCode(err, errors.CodeInsufficientData) {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", errors.GetCode(err))
	}
}

func TestExtract_Deterministic(t *testing.T) {
	extractor := NewExtractor(policy.Default())
	record := sampleCohort(137)

	first, err := extractor.Extract(record)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	second, err := extractor.Extract(record)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for i := range first.Vector.Values {
		if first.Vector.Values[i] != second.Vector.Values[i] {
			t.Errorf("feature %s differs between runs: %v vs %v",
				first.Vector.Names[i], first.Vector.Values[i], second.Vector.Values[i])
		}
	}
}

func TestExtract_FairnessValuesSharedWithVector(t *testing.T) {
	extractor := NewExtractor(policy.Default())

	result, err := extractor.Extract(sampleCohort(90))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// The embedded ratios and the reported metrics must be the same values,
	// not merely close.
	if result.Vector.Values[featureIndex(t, "demographic_parity")] != result.Fairness.DemographicParity {
		t.Error("demographic_parity feature differs from reported metric")
	}
	if result.Vector.Values[featureIndex(t, "disparate_impact_ratio")] != result.Fairness.DisparateImpactRatio {
		t.Error("disparate_impact_ratio feature differs from reported metric")
	}
	if result.Vector.Values[featureIndex(t, "equality_of_opportunity")] != result.Fairness.EqualityOfOpportunity {
		t.Error("equality_of_opportunity feature differs from reported metric")
	}
}

func TestExtract_KnownValues(t *testing.T) {
	extractor := NewExtractor(policy.Default())
	record := sampleCohort(100)

	result, err := extractor.Extract(record)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	v := result.Vector.Values

	if got := v[featureIndex(t, "sample_size_norm")]; math.Abs(got-0.1) > 1e-9 {
		t.Errorf("sample_size_norm for n=100: got %f, want 0.1", got)
	}
	if got := v[featureIndex(t, "gender_male")]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("gender_male: got %f, want 0.5", got)
	}
	if got := v[featureIndex(t, "gender_balance")]; math.Abs(got) > 1e-9 {
		t.Errorf("gender_balance for an even split: got %f, want 0", got)
	}
	if got := v[featureIndex(t, "ethnicity_white")]; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("ethnicity_white: got %f, want 0.2", got)
	}
	// Round-robin over five categories: diversity = 1 - 5 * 0.2^2
	if got := v[featureIndex(t, "ethnicity_diversity")]; math.Abs(got-0.8) > 1e-9 {
		t.Errorf("ethnicity_diversity: got %f, want 0.8", got)
	}
}

func TestSkewness_DegenerateInputs(t *testing.T) {
	if got := skewness([]float64{5, 5}, 5, 0); got != 0 {
		t.Errorf("skewness of constant data should be 0, got %f", got)
	}
	if got := skewness([]float64{1, 2}, 1.5, 0.5); got != 0 {
		t.Errorf("skewness of two points should be 0, got %f", got)
	}

	// Symmetric data has zero skewness
	symmetric := []float64{1, 2, 3, 4, 5}
	if got := skewness(symmetric, 3, math.Sqrt(2)); math.Abs(got) > 1e-9 {
		t.Errorf("symmetric data skewness: got %f, want 0", got)
	}
}
