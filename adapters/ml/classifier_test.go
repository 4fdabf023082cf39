package ml

import (
	"math/rand"
	"testing"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// separableData builds a 2D problem where the first feature decides the label
func separableData(n int, rng *rand.Rand) ([][]float64, []int) {
	rows := make([][]float64, n)
	labels := make([]int, n)
	for i := range rows {
		label := i % 2
		center := -1.5
		if label == 1 {
			center = 1.5
		}
		rows[i] = []float64{center + rng.NormFloat64()*0.4, rng.NormFloat64()}
		labels[i] = label
	}
	return rows, labels
}

func classifierAccuracy(t *testing.T, c ports.Classifier, rows [][]float64, labels []int) float64 {
	t.Helper()
	correct := 0
	for i, row := range rows {
		p, err := c.PredictProba(row)
		if err != nil {
			t.Fatalf("PredictProba failed: %v", err)
		}
		if (p >= 0.5) == (labels[i] == 1) {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

func TestLogisticRegression_SeparatesClasses(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	rows, labels := separableData(400, rng)

	model, err := FitLogisticRegression(rows, labels)
	if err != nil {
		t.Fatalf("FitLogisticRegression failed: %v", err)
	}

	if acc := classifierAccuracy(t, model, rows, labels); acc < 0.95 {
		t.Errorf("training accuracy on separable data: got %f, want >= 0.95", acc)
	}

	low, _ := model.PredictProba([]float64{-2, 0})
	high, _ := model.PredictProba([]float64{2, 0})
	if low >= high {
		t.Errorf("probability must increase along the separating feature: %f >= %f", low, high)
	}
}

func TestLogisticRegression_DeterministicFit(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	rows, labels := separableData(100, rng)

	a, err := FitLogisticRegression(rows, labels)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	b, err := FitLogisticRegression(rows, labels)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if a.Intercept != b.Intercept {
		t.Errorf("intercepts differ: %f vs %f", a.Intercept, b.Intercept)
	}
	for j := range a.Coefficients {
		if a.Coefficients[j] != b.Coefficients[j] {
			t.Errorf("coefficient %d differs: %f vs %f", j, a.Coefficients[j], b.Coefficients[j])
		}
	}
}

func TestGradientBoostedStumps_SeparatesClasses(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	rows, labels := separableData(400, rng)

	model, err := FitGradientBoostedStumps(rows, labels)
	if err != nil {
		t.Fatalf("FitGradientBoostedStumps failed: %v", err)
	}

	if acc := classifierAccuracy(t, model, rows, labels); acc < 0.95 {
		t.Errorf("training accuracy on separable data: got %f, want >= 0.95", acc)
	}
}

func TestSoftVotingEnsemble_WeightedAverage(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	rows, labels := separableData(300, rng)

	logistic, err := FitLogisticRegression(rows, labels)
	if err != nil {
		t.Fatalf("fit logistic failed: %v", err)
	}
	boosted, err := FitGradientBoostedStumps(rows, labels)
	if err != nil {
		t.Fatalf("fit boosted failed: %v", err)
	}

	ensemble, err := NewSoftVotingEnsemble([]ports.Classifier{boosted, logistic}, DefaultEnsembleWeights)
	if err != nil {
		t.Fatalf("NewSoftVotingEnsemble failed: %v", err)
	}

	x := rows[7]
	pb, _ := boosted.PredictProba(x)
	pl, _ := logistic.PredictProba(x)
	want := 0.66*pb + 0.34*pl

	got, err := ensemble.PredictProba(x)
	if err != nil {
		t.Fatalf("ensemble PredictProba failed: %v", err)
	}
	if got != want {
		t.Errorf("ensemble probability: got %f, want %f", got, want)
	}
}

func TestNewSoftVotingEnsemble_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	rows, labels := separableData(50, rng)
	model, err := FitLogisticRegression(rows, labels)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	cases := []struct {
		name    string
		members []ports.Classifier
		weights []float64
	}{
		{"no members", nil, nil},
		{"misaligned weights", []ports.Classifier{model}, []float64{0.5, 0.5}},
		{"non-positive weight", []ports.Classifier{model, model}, []float64{1.2, -0.2}},
		{"weights not summing to one", []ports.Classifier{model, model}, []float64{0.6, 0.6}},
	}
	for _, tc := range cases {
		if _, err := NewSoftVotingEnsemble(tc.members, tc.weights); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestClassifier_WidthMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	rows, labels := separableData(50, rng)

	model, err := FitLogisticRegression(rows, labels)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	_, err = model.PredictProba([]float64{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for a wide vector")
	}
	if !errors.HasCode(err, errors.CodeFeatureShapeMismatch) {
		t.Errorf("expected FEATURE_SHAPE_MISMATCH, got %s", errors.GetCode(err))
	}
}
