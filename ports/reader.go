package ports

import (
	"context"
	"io"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
)

// CohortReader parses an uploaded participant file into a cohort record.
// Implementations exist per format (CSV, JSON, XLSX) and are selected by the
// upload filename.
type CohortReader interface {
	// Read parses participant rows from r. The returned record carries the
	// upload content hash; the trial ID is assigned by the caller.
	Read(ctx context.Context, r io.Reader) (*cohort.Record, error)
}
