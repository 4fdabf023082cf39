package ports

import (
	"context"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
	"github.com/VruddithShetty/TrialEquity/domain/core"
)

// AssessmentRepository persists terminal assessment records for audit.
// Records are append-only: a re-assessment inserts a new row, it never
// updates an existing one.
type AssessmentRepository interface {
	Save(ctx context.Context, a *assessment.BiasAssessment) error
	Get(ctx context.Context, id core.AssessmentID) (*assessment.BiasAssessment, error)
	ListByTrial(ctx context.Context, trialID core.TrialID) ([]*assessment.BiasAssessment, error)
}
