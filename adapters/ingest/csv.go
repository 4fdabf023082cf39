package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

// CSVReader parses participant uploads with a header row. Column order is
// free; roles are resolved from the header names.
type CSVReader struct{}

func NewCSVReader() *CSVReader { return &CSVReader{} }

func (c *CSVReader) Read(ctx context.Context, r io.Reader) (*cohort.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.InvalidInput("empty CSV upload")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV header")
	}

	roles := make(map[string]int, 4)
	for i, name := range header {
		if role, ok := classifyHeader(name); ok {
			if _, taken := roles[role]; !taken {
				roles[role] = i
			}
		}
	}
	for _, required := range []string{colAge, colGender, colEthnicity, colEligibility} {
		if _, ok := roles[required]; !ok {
			return nil, errors.InvalidInput("CSV upload is missing a " + required + " column")
		}
	}

	var participants []cohort.Participant
	row := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse CSV row %d", row)
		}
		p, err := participantFromFields(fields, roles, row)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
		row++
	}

	return &cohort.Record{
		UploadHash:   core.NewUploadHash(content),
		Participants: participants,
	}, nil
}

func participantFromFields(fields []string, roles map[string]int, row int) (cohort.Participant, error) {
	var p cohort.Participant

	field := func(role string) (string, bool) {
		i := roles[role]
		if i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}

	rawAge, ok := field(colAge)
	if !ok {
		return p, errors.InvalidInput(fmt.Sprintf("row %d: missing age value", row))
	}
	age, err := strconv.ParseFloat(rawAge, 64)
	if err != nil {
		return p, errors.InvalidInput(fmt.Sprintf("row %d: unparseable age %q", row, rawAge))
	}
	p.Age = age

	rawGender, _ := field(colGender)
	gender, ok := normalizeGender(rawGender)
	if !ok {
		return p, errors.InvalidInput(fmt.Sprintf("row %d: unrecognized gender label %q", row, rawGender))
	}
	p.Gender = gender

	rawEthnicity, _ := field(colEthnicity)
	p.Ethnicity = normalizeEthnicity(rawEthnicity)

	rawScore, ok := field(colEligibility)
	if !ok {
		return p, errors.InvalidInput(fmt.Sprintf("row %d: missing eligibility score", row))
	}
	score, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		return p, errors.InvalidInput(fmt.Sprintf("row %d: unparseable eligibility score %q", row, rawScore))
	}
	p.EligibilityScore = score

	if err := validateParticipant(p, row); err != nil {
		return p, err
	}
	return p, nil
}
