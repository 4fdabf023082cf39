package cohort

import (
	"sort"

	"github.com/VruddithShetty/TrialEquity/domain/core"
)

// Gender is a participant's recorded gender category
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Genders lists the fixed gender category set in canonical order
var Genders = []Gender{GenderMale, GenderFemale}

// IsValid reports whether g is one of the fixed gender categories
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Ethnicity is a participant's recorded ethnicity category
type Ethnicity string

const (
	EthnicityWhite    Ethnicity = "white"
	EthnicityBlack    Ethnicity = "black"
	EthnicityAsian    Ethnicity = "asian"
	EthnicityHispanic Ethnicity = "hispanic"
	EthnicityOther    Ethnicity = "other"
)

// Ethnicities lists the fixed ethnicity category set in canonical order
var Ethnicities = []Ethnicity{
	EthnicityWhite, EthnicityBlack, EthnicityAsian, EthnicityHispanic, EthnicityOther,
}

// IsValid reports whether e is one of the fixed ethnicity categories
func (e Ethnicity) IsValid() bool {
	for _, known := range Ethnicities {
		if e == known {
			return true
		}
	}
	return false
}

// Participant is one row of a trial cohort upload
type Participant struct {
	Age              float64   `json:"age"`
	Gender           Gender    `json:"gender"`
	Ethnicity        Ethnicity `json:"ethnicity"`
	EligibilityScore float64   `json:"eligibility_score"`
}

// Record is the set of participant rows belonging to one trial upload.
// Immutable once an assessment has been derived from it; a re-assessment
// always starts from a fresh Record.
type Record struct {
	TrialID      core.TrialID    `json:"trial_id"`
	UploadHash   core.UploadHash `json:"upload_hash,omitempty"`
	Participants []Participant   `json:"participants"`
}

// Count returns the number of participants
func (r *Record) Count() int {
	return len(r.Participants)
}

// IsEmpty reports whether the cohort holds no participants
func (r *Record) IsEmpty() bool {
	return len(r.Participants) == 0
}

// Ages returns the participant ages in upload order
func (r *Record) Ages() []float64 {
	ages := make([]float64, len(r.Participants))
	for i, p := range r.Participants {
		ages[i] = p.Age
	}
	return ages
}

// EligibilityScores returns the participant eligibility scores in upload order
func (r *Record) EligibilityScores() []float64 {
	scores := make([]float64, len(r.Participants))
	for i, p := range r.Participants {
		scores[i] = p.EligibilityScore
	}
	return scores
}

// GenderCounts returns observed counts over the fixed gender category set
func (r *Record) GenderCounts() map[Gender]int {
	counts := make(map[Gender]int, len(Genders))
	for _, g := range Genders {
		counts[g] = 0
	}
	for _, p := range r.Participants {
		counts[p.Gender]++
	}
	return counts
}

// GenderShares returns gender proportions over the fixed category set.
// A missing category has share exactly 0.0.
func (r *Record) GenderShares() map[Gender]float64 {
	shares := make(map[Gender]float64, len(Genders))
	n := float64(len(r.Participants))
	if n == 0 {
		return shares
	}
	for g, c := range r.GenderCounts() {
		shares[g] = float64(c) / n
	}
	return shares
}

// EthnicityCounts returns observed counts over the fixed ethnicity category set
func (r *Record) EthnicityCounts() map[Ethnicity]int {
	counts := make(map[Ethnicity]int, len(Ethnicities))
	for _, e := range Ethnicities {
		counts[e] = 0
	}
	for _, p := range r.Participants {
		counts[p.Ethnicity]++
	}
	return counts
}

// EthnicityShares returns ethnicity proportions over the fixed category set.
// A missing category has share exactly 0.0.
func (r *Record) EthnicityShares() map[Ethnicity]float64 {
	shares := make(map[Ethnicity]float64, len(Ethnicities))
	n := float64(len(r.Participants))
	if n == 0 {
		return shares
	}
	for e, c := range r.EthnicityCounts() {
		shares[e] = float64(c) / n
	}
	return shares
}

// ObservedEthnicityShares returns the non-zero ethnicity shares in canonical
// category order. The disparate-impact ratio is defined over this set.
func (r *Record) ObservedEthnicityShares() []float64 {
	shares := r.EthnicityShares()
	observed := make([]float64, 0, len(Ethnicities))
	for _, e := range Ethnicities {
		if shares[e] > 0 {
			observed = append(observed, shares[e])
		}
	}
	return observed
}

// AgeRange returns max(age) - min(age), 0 for a single-participant cohort
func (r *Record) AgeRange() float64 {
	if len(r.Participants) == 0 {
		return 0
	}
	ages := r.Ages()
	sorted := make([]float64, len(ages))
	copy(sorted, ages)
	sort.Float64s(sorted)
	return sorted[len(sorted)-1] - sorted[0]
}
