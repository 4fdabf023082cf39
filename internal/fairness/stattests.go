package fairness

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/domain/cohort"
)

// TestRunner runs chi-square goodness-of-fit tests on the gender and
// ethnicity distributions against the expected-balanced reference: uniform
// across the fixed category set. Purely descriptive; thresholding into
// pass/fail happens in the decision engine.
type TestRunner struct{}

// NewTestRunner creates a statistical test runner
func NewTestRunner() *TestRunner {
	return &TestRunner{}
}

// Run computes per-attribute (statistic, p-value) pairs for the cohort
func (t *TestRunner) Run(record *cohort.Record) assessment.StatisticalTestResult {
	genderCounts := record.GenderCounts()
	genderObs := make([]float64, 0, len(cohort.Genders))
	for _, g := range cohort.Genders {
		genderObs = append(genderObs, float64(genderCounts[g]))
	}

	ethnicityCounts := record.EthnicityCounts()
	ethnicityObs := make([]float64, 0, len(cohort.Ethnicities))
	for _, e := range cohort.Ethnicities {
		ethnicityObs = append(ethnicityObs, float64(ethnicityCounts[e]))
	}

	return assessment.StatisticalTestResult{
		Gender:    goodnessOfFit(genderObs),
		Ethnicity: goodnessOfFit(ethnicityObs),
	}
}

// goodnessOfFit tests observed counts against a uniform expectation over the
// same categories
func goodnessOfFit(observed []float64) assessment.ChiSquareResult {
	total := 0.0
	for _, o := range observed {
		total += o
	}
	k := len(observed)
	if total == 0 || k < 2 {
		return assessment.ChiSquareResult{Statistic: 0, PValue: 1}
	}

	expected := total / float64(k)
	statistic := 0.0
	for _, o := range observed {
		diff := o - expected
		statistic += diff * diff / expected
	}

	return assessment.ChiSquareResult{
		Statistic: statistic,
		PValue:    chiSquarePValue(statistic, float64(k-1)),
	}
}

// chiSquarePValue is the upper-tail probability of the chi-square
// distribution with df degrees of freedom
func chiSquarePValue(statistic, df float64) float64 {
	if statistic <= 0 {
		return 1
	}
	dist := distuv.ChiSquared{K: df}
	p := dist.Survival(statistic)
	return clamp01(p)
}
