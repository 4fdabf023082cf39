package app

import (
	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/domain/cohort"
)

// Eligibility rule names reported to operators
const (
	RuleMinimumSampleSize   = "minimum_sample_size"
	RuleValidAgeRange       = "valid_age_range"
	RuleDemographicComplete = "demographic_completeness"
	RuleEligibilityMinimum  = "eligibility_score_threshold"
)

const (
	minimumSampleSize      = 30
	minimumAge             = 18.0
	maximumAge             = 100.0
	minimumMeanEligibility = 0.7
)

// ValidateEligibilityRules runs the mandatory eligibility checks. The result
// rides along with the assessment for operator context; it never gates the
// fairness verdict.
func ValidateEligibilityRules(record *cohort.Record) assessment.EligibilityRuleResult {
	var passed, failed []string

	check := func(name string, ok bool) {
		if ok {
			passed = append(passed, name)
		} else {
			failed = append(failed, name)
		}
	}

	check(RuleMinimumSampleSize, record.Count() >= minimumSampleSize)

	agesValid := true
	demographicsValid := true
	eligibilitySum := 0.0
	for _, p := range record.Participants {
		if p.Age < minimumAge || p.Age > maximumAge {
			agesValid = false
		}
		if !p.Gender.IsValid() || !p.Ethnicity.IsValid() {
			demographicsValid = false
		}
		eligibilitySum += p.EligibilityScore
	}
	check(RuleValidAgeRange, agesValid)
	check(RuleDemographicComplete, demographicsValid)

	meanEligibility := 0.0
	if record.Count() > 0 {
		meanEligibility = eligibilitySum / float64(record.Count())
	}
	check(RuleEligibilityMinimum, meanEligibility >= minimumMeanEligibility)

	status := "passed"
	if len(failed) > 0 {
		status = "failed"
	}
	return assessment.EligibilityRuleResult{
		Status:      status,
		RulesPassed: passed,
		RulesFailed: failed,
	}
}
