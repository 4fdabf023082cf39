package testkit

import (
	"testing"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/ports"
)

func TestGenerator_SeedReproducesCohorts(t *testing.T) {
	a := NewGenerator(ports.SeededRNG{}, 7)
	b := NewGenerator(ports.SeededRNG{}, 7)

	ca := a.BalancedCohort(120)
	cb := b.BalancedCohort(120)

	if len(ca.Participants) != len(cb.Participants) {
		t.Fatalf("cohort sizes differ: %d vs %d", len(ca.Participants), len(cb.Participants))
	}
	for i := range ca.Participants {
		if ca.Participants[i] != cb.Participants[i] {
			t.Fatalf("participant %d differs across identical seeds: %+v vs %+v",
				i, ca.Participants[i], cb.Participants[i])
		}
	}
}

func TestGenerator_DistinctSeedsDiffer(t *testing.T) {
	a := NewGenerator(ports.SeededRNG{}, 7)
	b := NewGenerator(ports.SeededRNG{}, 8)

	ca := a.BalancedCohort(120)
	cb := b.BalancedCohort(120)

	same := true
	for i := range ca.Participants {
		if ca.Participants[i] != cb.Participants[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds should produce different cohorts")
	}
}

func TestLabeledCohorts_PatternMix(t *testing.T) {
	g := NewGenerator(ports.SeededRNG{}, 9)
	records, labels := g.LabeledCohorts(100)

	if len(records) != 100 || len(labels) != 100 {
		t.Fatalf("expected 100 cohorts and labels, got %d and %d", len(records), len(labels))
	}

	unbiased := 0
	for _, l := range labels {
		if l == 0 {
			unbiased++
		} else if l != 1 {
			t.Fatalf("labels must be binary, got %d", l)
		}
	}
	if unbiased != 40 {
		t.Errorf("expected 40 unbiased cohorts out of 100, got %d", unbiased)
	}

	for i, r := range records {
		if r.IsEmpty() {
			t.Errorf("cohort %d is empty", i)
		}
	}
}

func TestGenerator_PatternShapes(t *testing.T) {
	g := NewGenerator(ports.SeededRNG{}, 10)

	skewed := g.GenderSkewedCohort(400, 0.9)
	shares := skewed.GenderShares()
	if shares[cohort.GenderMale] < 0.8 {
		t.Errorf("gender-skewed cohort male share: got %f, want >= 0.8", shares[cohort.GenderMale])
	}

	single := g.SingleEthnicityCohort(200, cohort.EthnicityAsian)
	counts := single.EthnicityCounts()
	if counts[cohort.EthnicityAsian] != 200 {
		t.Errorf("single-ethnicity cohort should be uniform, got %v", counts)
	}

	under := g.UnderpoweredCohort()
	if under.Count() < 5 || under.Count() >= 20 {
		t.Errorf("underpowered cohort size out of [5, 20): %d", under.Count())
	}

	aged := g.AgeSkewedCohort(300)
	if spread := aged.AgeRange(); spread > 40 {
		t.Errorf("age-skewed cohort spread too wide: %f", spread)
	}
}

func TestGenerator_ParticipantsWithinBounds(t *testing.T) {
	g := NewGenerator(ports.SeededRNG{}, 11)
	records, _ := g.LabeledCohorts(50)

	for _, r := range records {
		for _, p := range r.Participants {
			if p.Age < 18 || p.Age > 90 {
				t.Fatalf("age out of [18, 90]: %f", p.Age)
			}
			if p.EligibilityScore < 0 || p.EligibilityScore > 1 {
				t.Fatalf("eligibility score out of [0, 1]: %f", p.EligibilityScore)
			}
			if p.Gender != cohort.GenderMale && p.Gender != cohort.GenderFemale {
				t.Fatalf("unknown gender %q", p.Gender)
			}
		}
	}
}
