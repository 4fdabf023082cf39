package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

// JSONReader parses participant uploads shaped either as a bare array of
// participant objects or as an object with a "participants" array.
type JSONReader struct{}

func NewJSONReader() *JSONReader { return &JSONReader{} }

type jsonParticipant struct {
	Age              float64 `json:"age"`
	Gender           string  `json:"gender"`
	Ethnicity        string  `json:"ethnicity"`
	EligibilityScore float64 `json:"eligibility_score"`
}

type jsonUpload struct {
	Participants []jsonParticipant `json:"participants"`
}

func (j *JSONReader) Read(ctx context.Context, r io.Reader) (*cohort.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []jsonParticipant
	if err := json.Unmarshal(content, &rows); err != nil {
		var wrapped jsonUpload
		if err := json.Unmarshal(content, &wrapped); err != nil {
			return nil, errors.InvalidInput("JSON upload is neither a participant array nor a participants object")
		}
		rows = wrapped.Participants
	}

	participants := make([]cohort.Participant, 0, len(rows))
	for i, row := range rows {
		gender, ok := normalizeGender(row.Gender)
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: unrecognized gender label %q", i+1, row.Gender))
		}
		p := cohort.Participant{
			Age:              row.Age,
			Gender:           gender,
			Ethnicity:        normalizeEthnicity(row.Ethnicity),
			EligibilityScore: row.EligibilityScore,
		}
		if err := validateParticipant(p, i+1); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return &cohort.Record{
		UploadHash:   core.NewUploadHash(content),
		Participants: participants,
	}, nil
}
