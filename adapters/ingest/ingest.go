package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// ForFilename selects the reader matching the upload's file extension
func ForFilename(name string) (ports.CohortReader, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return NewCSVReader(), nil
	case ".json":
		return NewJSONReader(), nil
	case ".xlsx":
		return NewExcelReader(), nil
	default:
		return nil, errors.InvalidInput("unsupported upload format: " + filepath.Ext(name))
	}
}

// column roles recognized in tabular uploads
const (
	colAge         = "age"
	colGender      = "gender"
	colEthnicity   = "ethnicity"
	colEligibility = "eligibility"
)

// headerAliases maps normalized upload column headers to the role they
// carry. Matching is exact against known aliases; a column named "stage" or
// "dosage" must never be claimed as the age column.
var headerAliases = map[string]string{
	"age":               colAge,
	"participant age":   colAge,
	"age years":         colAge,
	"gender":            colGender,
	"sex":               colGender,
	"ethnicity":         colEthnicity,
	"race":              colEthnicity,
	"eligibility":       colEligibility,
	"eligibility score": colEligibility,
}

// classifyHeader maps an upload column header to the role it carries, so
// "Participant Age", "Sex" and "eligibility_score" all resolve.
func classifyHeader(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	h = strings.Join(strings.Fields(h), " ")
	role, ok := headerAliases[h]
	return role, ok
}

// normalizeGender folds common label variants into the fixed category set
func normalizeGender(raw string) (cohort.Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m", "man":
		return cohort.GenderMale, true
	case "female", "f", "woman":
		return cohort.GenderFemale, true
	}
	return "", false
}

// normalizeEthnicity folds common label variants into the fixed category set.
// Unrecognized labels land in "other" rather than failing the upload.
func normalizeEthnicity(raw string) cohort.Ethnicity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "white", "caucasian":
		return cohort.EthnicityWhite
	case "black", "african american", "african-american":
		return cohort.EthnicityBlack
	case "asian":
		return cohort.EthnicityAsian
	case "hispanic", "latino", "latina", "latinx":
		return cohort.EthnicityHispanic
	default:
		return cohort.EthnicityOther
	}
}

func validateParticipant(p cohort.Participant, row int) error {
	if p.Age < 0 || p.Age > 130 {
		return errors.InvalidInput(fmt.Sprintf("row %d: age out of range", row))
	}
	if p.EligibilityScore < 0 || p.EligibilityScore > 1 {
		return errors.InvalidInput(fmt.Sprintf("row %d: eligibility score outside [0, 1]", row))
	}
	return nil
}
