package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// AssessmentRepositoryImpl implements AssessmentRepository for PostgreSQL
type AssessmentRepositoryImpl struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new PostgreSQL assessment repository
func NewAssessmentRepository(db *sqlx.DB) ports.AssessmentRepository {
	return &AssessmentRepositoryImpl{db: db}
}

// Save inserts a terminal assessment record. Records are append-only, so a
// duplicate ID is a caller bug and surfaces as a database error.
func (r *AssessmentRepositoryImpl) Save(ctx context.Context, a *assessment.BiasAssessment) error {
	featuresJSON, _ := json.Marshal(a.Features)
	fairnessJSON, _ := json.Marshal(a.Fairness)
	testsJSON, _ := json.Marshal(a.Tests)
	eligibilityJSON, _ := json.Marshal(a.Eligibility)

	recommendations := a.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	recommendationsJSON, _ := json.Marshal(recommendations)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bias_assessments (
			id, trial_id, features, outlier_score, is_outlier, bias_probability,
			fairness_metrics, statistical_tests, fairness_score, verdict,
			recommendations, rejection_summary, eligibility,
			model_version, model_accuracy, upload_hash, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		string(a.ID), string(a.TrialID), featuresJSON, a.OutlierScore, a.IsOutlier, a.BiasProbability,
		fairnessJSON, testsJSON, a.FairnessScore, string(a.Verdict),
		recommendationsJSON, a.RejectionSummary, eligibilityJSON,
		a.ModelVersion, a.ModelAccuracy, a.UploadHash.String(), a.AssessedAt.Time())
	if err != nil {
		return errors.DatabaseError("failed to save assessment: " + err.Error())
	}
	return nil
}

// Get retrieves an assessment by ID
func (r *AssessmentRepositoryImpl) Get(ctx context.Context, id core.AssessmentID) (*assessment.BiasAssessment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, trial_id, features, outlier_score, is_outlier, bias_probability,
			   fairness_metrics, statistical_tests, fairness_score, verdict,
			   recommendations, rejection_summary, eligibility,
			   model_version, model_accuracy, upload_hash, assessed_at
		FROM bias_assessments
		WHERE id = $1`, string(id))

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("assessment " + string(id))
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load assessment: " + err.Error())
	}
	return a, nil
}

// ListByTrial returns all assessments for a trial, newest first
func (r *AssessmentRepositoryImpl) ListByTrial(ctx context.Context, trialID core.TrialID) ([]*assessment.BiasAssessment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trial_id, features, outlier_score, is_outlier, bias_probability,
			   fairness_metrics, statistical_tests, fairness_score, verdict,
			   recommendations, rejection_summary, eligibility,
			   model_version, model_accuracy, upload_hash, assessed_at
		FROM bias_assessments
		WHERE trial_id = $1
		ORDER BY assessed_at DESC`, string(trialID))
	if err != nil {
		return nil, errors.DatabaseError("failed to list assessments: " + err.Error())
	}
	defer rows.Close()

	var results []*assessment.BiasAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, errors.DatabaseError("failed to scan assessment: " + err.Error())
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("failed to iterate assessments: " + err.Error())
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(row rowScanner) (*assessment.BiasAssessment, error) {
	var a assessment.BiasAssessment
	var id, trialID, verdict string
	var featuresJSON, fairnessJSON, testsJSON, recommendationsJSON, eligibilityJSON []byte
	var rejectionSummary, uploadHash sql.NullString
	var assessedAt time.Time

	err := row.Scan(
		&id, &trialID, &featuresJSON, &a.OutlierScore, &a.IsOutlier, &a.BiasProbability,
		&fairnessJSON, &testsJSON, &a.FairnessScore, &verdict,
		&recommendationsJSON, &rejectionSummary, &eligibilityJSON,
		&a.ModelVersion, &a.ModelAccuracy, &uploadHash, &assessedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ID = core.AssessmentID(id)
	a.TrialID = core.TrialID(trialID)
	a.Verdict = assessment.Verdict(verdict)
	a.RejectionSummary = rejectionSummary.String
	a.UploadHash = core.UploadHash(uploadHash.String)
	a.AssessedAt = core.NewTimestamp(assessedAt)

	if err := json.Unmarshal(featuresJSON, &a.Features); err != nil {
		return nil, err
	}
	json.Unmarshal(fairnessJSON, &a.Fairness)
	json.Unmarshal(testsJSON, &a.Tests)
	json.Unmarshal(recommendationsJSON, &a.Recommendations)
	json.Unmarshal(eligibilityJSON, &a.Eligibility)

	return &a, nil
}
