package app

import (
	"context"
	"fmt"
	"time"

	"github.com/VruddithShetty/TrialEquity/adapters/ml"
	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/internal/features"
	"github.com/VruddithShetty/TrialEquity/internal/policy"
	"github.com/VruddithShetty/TrialEquity/internal/testkit"
	"github.com/VruddithShetty/TrialEquity/ports"
)

const (
	defaultTrainingCohorts = 2000
	holdoutFraction        = 0.2
	labelThreshold         = 0.5
)

// TrainingService builds model bundles from synthetic labeled cohorts and
// saves them through the store. It is the on-demand fallback for a missing
// bundle; core assessment never trains.
type TrainingService struct {
	store     ports.ModelStore
	rng       ports.RNG
	extractor *features.Extractor
	policy    policy.Policy
}

// TrainingResult summarizes one training run
type TrainingResult struct {
	Version   string    `json:"version"`
	Accuracy  float64   `json:"accuracy"`
	Cohorts   int       `json:"cohorts"`
	TrainedAt time.Time `json:"trained_at"`
}

// NewTrainingService creates a training service under the given policy
func NewTrainingService(store ports.ModelStore, rng ports.RNG, p policy.Policy) *TrainingService {
	return &TrainingService{
		store:     store,
		rng:       rng,
		extractor: features.NewExtractor(p),
		policy:    p,
	}
}

// Train synthesizes cohorts, fits the scaler, isolation forest and the
// two-member soft-voting ensemble, evaluates held-out accuracy, and saves
// the bundle atomically. A fixed seed reproduces the bundle exactly.
func (s *TrainingService) Train(ctx context.Context, cohorts int, seed int64) (*TrainingResult, error) {
	if cohorts <= 0 {
		cohorts = defaultTrainingCohorts
	}

	generator := testkit.NewGenerator(s.rng, seed)
	records, labels := generator.LabeledCohorts(cohorts)

	rows, err := s.featureMatrix(records)
	if err != nil {
		return nil, err
	}

	// Deterministic shuffle before the holdout split so the pattern
	// families mix across both partitions.
	shuffleRng := s.rng.Stream("training-split", seed)
	for i := len(rows) - 1; i > 0; i-- {
		j := shuffleRng.Intn(i + 1)
		rows[i], rows[j] = rows[j], rows[i]
		labels[i], labels[j] = labels[j], labels[i]
	}

	holdout := int(float64(len(rows)) * holdoutFraction)
	if holdout < 1 {
		return nil, errors.InvalidInput("too few cohorts to hold out a test split")
	}
	trainRows, testRows := rows[holdout:], rows[:holdout]
	trainLabels, testLabels := labels[holdout:], labels[:holdout]

	scaler, err := ml.FitScaler(trainRows)
	if err != nil {
		return nil, err
	}
	scaledTrain, err := scaler.TransformAll(trainRows)
	if err != nil {
		return nil, err
	}

	forest, err := ml.FitIsolationForest(scaledTrain, s.policy.Contamination, s.rng.Stream("isolation-forest", seed))
	if err != nil {
		return nil, err
	}

	boosted, err := ml.FitGradientBoostedStumps(scaledTrain, trainLabels)
	if err != nil {
		return nil, err
	}
	logistic, err := ml.FitLogisticRegression(scaledTrain, trainLabels)
	if err != nil {
		return nil, err
	}
	ensemble, err := ml.NewSoftVotingEnsemble(
		[]ports.Classifier{boosted, logistic},
		ml.DefaultEnsembleWeights,
	)
	if err != nil {
		return nil, err
	}

	accuracy, err := evaluateAccuracy(ensemble, scaler, testRows, testLabels)
	if err != nil {
		return nil, err
	}

	bundle := &ports.ModelBundle{
		Classifier:   ensemble,
		OutlierModel: forest,
		Scaler:       scaler,
		FeatureNames: features.ProductionFeatureNames,
		Accuracy:     accuracy,
		Version:      fmt.Sprintf("bundle-%d", time.Now().Unix()),
		TrainedAt:    time.Now().UTC(),
	}
	if err := s.store.Save(ctx, bundle); err != nil {
		return nil, err
	}

	return &TrainingResult{
		Version:   bundle.Version,
		Accuracy:  accuracy,
		Cohorts:   cohorts,
		TrainedAt: bundle.TrainedAt,
	}, nil
}

// featureMatrix extracts the production feature vector for every cohort
func (s *TrainingService) featureMatrix(records []*cohort.Record) ([][]float64, error) {
	rows := make([][]float64, len(records))
	for i, record := range records {
		extraction, err := s.extractor.Extract(record)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract features for training cohort %d", i)
		}
		rows[i] = extraction.Vector.Values
	}
	return rows, nil
}

func evaluateAccuracy(classifier ports.Classifier, scaler ports.Scaler, rows [][]float64, labels []int) (float64, error) {
	if len(rows) == 0 {
		return 0, errors.InvalidInput("no held-out rows to evaluate")
	}
	correct := 0
	for i, row := range rows {
		scaled, err := scaler.Transform(row)
		if err != nil {
			return 0, err
		}
		p, err := classifier.PredictProba(scaled)
		if err != nil {
			return 0, err
		}
		predicted := 0
		if p >= labelThreshold {
			predicted = 1
		}
		if predicted == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(rows)), nil
}
