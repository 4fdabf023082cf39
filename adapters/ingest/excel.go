package ingest

import (
	"bytes"
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

// ExcelReader parses XLSX participant uploads. Rows come from the first
// sheet; the first row is the header.
type ExcelReader struct{}

func NewExcelReader() *ExcelReader { return &ExcelReader{} }

func (e *ExcelReader) Read(ctx context.Context, r io.Reader) (*cohort.Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.InvalidInput("failed to open XLSX upload: " + err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("XLSX upload has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read XLSX rows")
	}
	if len(rows) == 0 {
		return nil, errors.InvalidInput("empty XLSX upload")
	}

	roles := make(map[string]int, 4)
	for i, name := range rows[0] {
		if role, ok := classifyHeader(name); ok {
			if _, taken := roles[role]; !taken {
				roles[role] = i
			}
		}
	}
	for _, required := range []string{colAge, colGender, colEthnicity, colEligibility} {
		if _, ok := roles[required]; !ok {
			return nil, errors.InvalidInput("XLSX upload is missing a " + required + " column")
		}
	}

	var participants []cohort.Participant
	for i, fields := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		p, err := participantFromFields(fields, roles, i+1)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return &cohort.Record{
		UploadHash:   core.NewUploadHash(content),
		Participants: participants,
	}, nil
}
