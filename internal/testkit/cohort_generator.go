// Package testkit provides seeded synthetic cohort generation. The training
// service uses it to synthesize labeled biased/unbiased cohorts, and tests
// use it for reproducible fixtures. All randomness flows through the
// injected RNG so a fixed seed reproduces every cohort exactly.
package testkit

import (
	"math"
	"math/rand"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// Generator synthesizes participant cohorts with controlled bias patterns
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a named deterministic stream
func NewGenerator(rng ports.RNG, seed int64) *Generator {
	return &Generator{rng: rng.Stream("cohort-generator", seed)}
}

// BalancedCohort has a near 50/50 gender split, diverse ethnicity, broad
// ages, and strong eligibility: the unbiased reference pattern.
func (g *Generator) BalancedCohort(n int) *cohort.Record {
	return g.synthesize(n, synthesisParams{
		ageMean: 49, ageStd: 16,
		maleShare: 0.48 + g.rng.Float64()*0.04,
		ethnicityWeights: map[cohort.Ethnicity]float64{
			cohort.EthnicityWhite:    0.30,
			cohort.EthnicityBlack:    0.22,
			cohort.EthnicityAsian:    0.20,
			cohort.EthnicityHispanic: 0.18,
			cohort.EthnicityOther:    0.10,
		},
		eligibilityMean: 0.85, eligibilityStd: 0.05,
	})
}

// GenderSkewedCohort over-represents one gender
func (g *Generator) GenderSkewedCohort(n int, maleShare float64) *cohort.Record {
	return g.synthesize(n, synthesisParams{
		ageMean: 52, ageStd: 13,
		maleShare: maleShare,
		ethnicityWeights: map[cohort.Ethnicity]float64{
			cohort.EthnicityWhite:    0.45,
			cohort.EthnicityBlack:    0.20,
			cohort.EthnicityAsian:    0.15,
			cohort.EthnicityHispanic: 0.12,
			cohort.EthnicityOther:    0.08,
		},
		eligibilityMean: 0.75, eligibilityStd: 0.08,
	})
}

// SingleEthnicityCohort draws every participant from one ethnicity
func (g *Generator) SingleEthnicityCohort(n int, eth cohort.Ethnicity) *cohort.Record {
	return g.synthesize(n, synthesisParams{
		ageMean: 50, ageStd: 14,
		maleShare:        0.5,
		ethnicityWeights: map[cohort.Ethnicity]float64{eth: 1.0},
		eligibilityMean:  0.8, eligibilityStd: 0.06,
	})
}

// AgeSkewedCohort clusters participants in a narrow elderly band
func (g *Generator) AgeSkewedCohort(n int) *cohort.Record {
	return g.synthesize(n, synthesisParams{
		ageMean: 72, ageStd: 4,
		maleShare: 0.45 + g.rng.Float64()*0.1,
		ethnicityWeights: map[cohort.Ethnicity]float64{
			cohort.EthnicityWhite:    0.55,
			cohort.EthnicityBlack:    0.18,
			cohort.EthnicityAsian:    0.12,
			cohort.EthnicityHispanic: 0.10,
			cohort.EthnicityOther:    0.05,
		},
		eligibilityMean: 0.72, eligibilityStd: 0.08,
	})
}

// UnderpoweredCohort is demographically reasonable but far too small
func (g *Generator) UnderpoweredCohort() *cohort.Record {
	n := 5 + g.rng.Intn(15)
	return g.synthesize(n, synthesisParams{
		ageMean: 50, ageStd: 15,
		maleShare: 0.45 + g.rng.Float64()*0.1,
		ethnicityWeights: map[cohort.Ethnicity]float64{
			cohort.EthnicityWhite:    0.35,
			cohort.EthnicityBlack:    0.25,
			cohort.EthnicityAsian:    0.20,
			cohort.EthnicityHispanic: 0.12,
			cohort.EthnicityOther:    0.08,
		},
		eligibilityMean: 0.78, eligibilityStd: 0.08,
	})
}

// MixedBiasCohort combines moderate gender and ethnicity imbalance with a
// compressed age band
func (g *Generator) MixedBiasCohort(n int) *cohort.Record {
	return g.synthesize(n, synthesisParams{
		ageMean: 63, ageStd: 7,
		maleShare: 0.65 + g.rng.Float64()*0.15,
		ethnicityWeights: map[cohort.Ethnicity]float64{
			cohort.EthnicityWhite:    0.72,
			cohort.EthnicityBlack:    0.10,
			cohort.EthnicityAsian:    0.08,
			cohort.EthnicityHispanic: 0.06,
			cohort.EthnicityOther:    0.04,
		},
		eligibilityMean: 0.65, eligibilityStd: 0.10,
	})
}

// LabeledCohorts synthesizes a labeled training corpus with the standard
// pattern mix: 40% unbiased, then 20% age-skewed, 20% gender-imbalanced,
// 10% underpowered and 10% mixed, all labeled biased.
func (g *Generator) LabeledCohorts(total int) ([]*cohort.Record, []int) {
	records := make([]*cohort.Record, 0, total)
	labels := make([]int, 0, total)

	add := func(r *cohort.Record, label int) {
		records = append(records, r)
		labels = append(labels, label)
	}

	nUnbiased := total * 4 / 10
	nAgeSkewed := total * 2 / 10
	nGenderSkewed := total * 2 / 10
	nUnderpowered := total / 10
	nMixed := total - nUnbiased - nAgeSkewed - nGenderSkewed - nUnderpowered

	for i := 0; i < nUnbiased; i++ {
		add(g.BalancedCohort(g.cohortSize()), 0)
	}
	for i := 0; i < nAgeSkewed; i++ {
		add(g.AgeSkewedCohort(g.cohortSize()), 1)
	}
	for i := 0; i < nGenderSkewed; i++ {
		add(g.GenderSkewedCohort(g.cohortSize(), 0.75+g.rng.Float64()*0.15), 1)
	}
	for i := 0; i < nUnderpowered; i++ {
		add(g.UnderpoweredCohort(), 1)
	}
	for i := 0; i < nMixed; i++ {
		add(g.MixedBiasCohort(g.cohortSize()), 1)
	}

	return records, labels
}

func (g *Generator) cohortSize() int {
	return 60 + g.rng.Intn(440)
}

type synthesisParams struct {
	ageMean, ageStd                 float64
	maleShare                       float64
	ethnicityWeights                map[cohort.Ethnicity]float64
	eligibilityMean, eligibilityStd float64
}

func (g *Generator) synthesize(n int, p synthesisParams) *cohort.Record {
	participants := make([]cohort.Participant, n)
	for i := range participants {
		participants[i] = cohort.Participant{
			Age:              clamp(g.rng.NormFloat64()*p.ageStd+p.ageMean, 18, 90),
			Gender:           g.drawGender(p.maleShare),
			Ethnicity:        g.drawEthnicity(p.ethnicityWeights),
			EligibilityScore: clamp(g.rng.NormFloat64()*p.eligibilityStd+p.eligibilityMean, 0, 1),
		}
	}
	return &cohort.Record{
		TrialID:      core.TrialID(core.NewID()),
		Participants: participants,
	}
}

func (g *Generator) drawGender(maleShare float64) cohort.Gender {
	if g.rng.Float64() < maleShare {
		return cohort.GenderMale
	}
	return cohort.GenderFemale
}

func (g *Generator) drawEthnicity(weights map[cohort.Ethnicity]float64) cohort.Ethnicity {
	total := 0.0
	for _, e := range cohort.Ethnicities {
		total += weights[e]
	}
	draw := g.rng.Float64() * total
	acc := 0.0
	for _, e := range cohort.Ethnicities {
		acc += weights[e]
		if draw < acc {
			return e
		}
	}
	return cohort.EthnicityOther
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
