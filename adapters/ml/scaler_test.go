package ml

import (
	"math"
	"testing"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

func TestFitScaler_KnownStatistics(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{3, 10},
	}
	scaler, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}

	if scaler.Mean[0] != 2 || scaler.Mean[1] != 10 {
		t.Errorf("unexpected means: %v", scaler.Mean)
	}
	// Second column is constant; its std must fall back to 1
	if scaler.Std[0] != 1 || scaler.Std[1] != 1 {
		t.Errorf("unexpected stds: %v", scaler.Std)
	}

	scaled, err := scaler.Transform([]float64{1, 10})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if scaled[0] != -1 {
		t.Errorf("scaled[0]: got %f, want -1", scaled[0])
	}
	if scaled[1] != 0 {
		t.Errorf("constant column should pass through centered: got %f", scaled[1])
	}
}

func TestScaler_TransformNormalizes(t *testing.T) {
	rows := [][]float64{
		{2, 100},
		{4, 200},
		{6, 300},
		{8, 400},
	}
	scaler, err := FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		t.Fatalf("TransformAll failed: %v", err)
	}

	for j := 0; j < 2; j++ {
		mean, variance := 0.0, 0.0
		for _, row := range scaled {
			mean += row[j]
		}
		mean /= float64(len(scaled))
		for _, row := range scaled {
			variance += (row[j] - mean) * (row[j] - mean)
		}
		variance /= float64(len(scaled))

		if math.Abs(mean) > 1e-9 {
			t.Errorf("column %d mean after scaling: got %f, want 0", j, mean)
		}
		if math.Abs(variance-1) > 1e-9 {
			t.Errorf("column %d variance after scaling: got %f, want 1", j, variance)
		}
	}
}

func TestScaler_WidthMismatch(t *testing.T) {
	scaler, err := FitScaler([][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}

	_, err = scaler.Transform([]float64{1, 2})
	if err == nil {
		t.Fatal("expected error for a short vector")
	}
	if !errors.HasCode(err, errors.CodeFeatureShapeMismatch) {
		t.Errorf("expected FEATURE_SHAPE_MISMATCH, got %s", errors.GetCode(err))
	}
}

func TestFitScaler_EmptyInput(t *testing.T) {
	if _, err := FitScaler(nil); err == nil {
		t.Fatal("expected error for empty training data")
	}
}
