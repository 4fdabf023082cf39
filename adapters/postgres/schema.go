package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

const assessmentsSchema = `
CREATE TABLE IF NOT EXISTS bias_assessments (
	id                TEXT PRIMARY KEY,
	trial_id          TEXT NOT NULL,
	features          JSONB NOT NULL,
	outlier_score     DOUBLE PRECISION NOT NULL,
	is_outlier        BOOLEAN NOT NULL,
	bias_probability  DOUBLE PRECISION NOT NULL,
	fairness_metrics  JSONB NOT NULL,
	statistical_tests JSONB NOT NULL,
	fairness_score    DOUBLE PRECISION NOT NULL,
	verdict           TEXT NOT NULL,
	recommendations   JSONB NOT NULL,
	rejection_summary TEXT,
	eligibility       JSONB NOT NULL,
	model_version     TEXT NOT NULL,
	model_accuracy    DOUBLE PRECISION NOT NULL,
	upload_hash       TEXT,
	assessed_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bias_assessments_trial
	ON bias_assessments (trial_id, assessed_at DESC);
`

// EnsureSchema creates the assessment audit table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, assessmentsSchema); err != nil {
		return errors.DatabaseError("failed to ensure schema: " + err.Error())
	}
	return nil
}
