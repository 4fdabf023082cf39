package modelstore

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/VruddithShetty/TrialEquity/adapters/ml"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

func trainedBundle(t *testing.T, names []string) *ports.ModelBundle {
	t.Helper()
	width := len(names)
	rng := rand.New(rand.NewSource(41))

	rows := make([][]float64, 200)
	labels := make([]int, 200)
	for i := range rows {
		row := make([]float64, width)
		label := i % 2
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		if label == 1 {
			row[0] += 3
		}
		rows[i] = row
		labels[i] = label
	}

	scaler, err := ml.FitScaler(rows)
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		t.Fatalf("TransformAll failed: %v", err)
	}
	forest, err := ml.FitIsolationForest(scaled, 0.1, rng)
	if err != nil {
		t.Fatalf("FitIsolationForest failed: %v", err)
	}
	logistic, err := ml.FitLogisticRegression(scaled, labels)
	if err != nil {
		t.Fatalf("FitLogisticRegression failed: %v", err)
	}
	boosted, err := ml.FitGradientBoostedStumps(scaled, labels)
	if err != nil {
		t.Fatalf("FitGradientBoostedStumps failed: %v", err)
	}
	ensemble, err := ml.NewSoftVotingEnsemble([]ports.Classifier{boosted, logistic}, ml.DefaultEnsembleWeights)
	if err != nil {
		t.Fatalf("NewSoftVotingEnsemble failed: %v", err)
	}

	return &ports.ModelBundle{
		Classifier:   ensemble,
		OutlierModel: forest,
		Scaler:       scaler,
		FeatureNames: names,
		Accuracy:     0.93,
		Version:      "bundle-test",
		TrainedAt:    time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC),
	}
}

func TestFileStore_LoadWithoutArtifacts(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	_, err = store.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for an empty model directory")
	}
	if !errors.HasCode(err, errors.CodeModelNotTrained) {
		t.Errorf("expected MODEL_NOT_TRAINED, got %s", errors.GetCode(err))
	}
	if store.Current() != nil {
		t.Error("failed load must not populate the current bundle")
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	names := []string{"f0", "f1", "f2"}
	bundle := trainedBundle(t, names)

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := store.Save(context.Background(), bundle); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if store.Current() != bundle {
		t.Error("Save must make the bundle current")
	}

	// A fresh store sees only what was persisted
	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	loaded, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Version != bundle.Version {
		t.Errorf("version: got %s, want %s", loaded.Version, bundle.Version)
	}
	if loaded.Accuracy != bundle.Accuracy {
		t.Errorf("accuracy: got %f, want %f", loaded.Accuracy, bundle.Accuracy)
	}
	if !loaded.TrainedAt.Equal(bundle.TrainedAt) {
		t.Errorf("trained at: got %v, want %v", loaded.TrainedAt, bundle.TrainedAt)
	}
	for i, name := range names {
		if loaded.FeatureNames[i] != name {
			t.Errorf("feature name %d: got %s, want %s", i, loaded.FeatureNames[i], name)
		}
	}

	// Restored models must behave identically
	probe := []float64{0.7, -0.3, 0.1}
	wantScaled, _ := bundle.Scaler.Transform(probe)
	gotScaled, err := loaded.Scaler.Transform(probe)
	if err != nil {
		t.Fatalf("restored Transform failed: %v", err)
	}
	for j := range wantScaled {
		if gotScaled[j] != wantScaled[j] {
			t.Errorf("scaled value %d differs: %f vs %f", j, gotScaled[j], wantScaled[j])
		}
	}

	wantProba, _ := bundle.Classifier.PredictProba(wantScaled)
	gotProba, err := loaded.Classifier.PredictProba(gotScaled)
	if err != nil {
		t.Fatalf("restored PredictProba failed: %v", err)
	}
	if gotProba != wantProba {
		t.Errorf("classifier probability differs: %f vs %f", gotProba, wantProba)
	}

	wantScore, _ := bundle.OutlierModel.Score(wantScaled)
	gotScore, err := loaded.OutlierModel.Score(gotScaled)
	if err != nil {
		t.Fatalf("restored Score failed: %v", err)
	}
	if gotScore != wantScore {
		t.Errorf("outlier score differs: %f vs %f", gotScore, wantScore)
	}
}

func TestFileStore_RejectsManifestMismatch(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	bundle := trainedBundle(t, []string{"f0", "f1", "f2"})
	bundle.FeatureNames = []string{"f0", "f1"} // manifest shorter than model width

	err = store.Save(context.Background(), bundle)
	if err == nil {
		t.Fatal("expected error for a manifest/model width mismatch")
	}
	if !errors.HasCode(err, errors.CodeFeatureShapeMismatch) {
		t.Errorf("expected FEATURE_SHAPE_MISMATCH, got %s", errors.GetCode(err))
	}
	if store.Current() != nil {
		t.Error("failed save must not swap the current bundle")
	}
}

func TestFileStore_SaveReplacesCurrentAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	first := trainedBundle(t, []string{"f0", "f1", "f2"})
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := trainedBundle(t, []string{"f0", "f1", "f2"})
	second.Version = "bundle-test-2"
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if got := store.Current(); got.Version != "bundle-test-2" {
		t.Errorf("current bundle version: got %s, want bundle-test-2", got.Version)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Version != "bundle-test-2" {
		t.Errorf("persisted bundle version: got %s, want bundle-test-2", loaded.Version)
	}
}
