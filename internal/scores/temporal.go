package scores

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/ainavigator/backend/internal/capability"
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Query parameters carrying a temporal filter
const (
	ParamAssessmentDate = "assessment_date"
	ParamSurveyWave     = "survey_wave"
	ParamDateFrom       = "date_from"
	ParamDateTo         = "date_to"
)

// ParseTemporalFilter reads a TemporalFilter from query parameters.
// Only the highest-precedence constraint is kept: exact date, then wave,
// then the from/to range (either bound alone is allowed).
func ParseTemporalFilter(q url.Values) (contracts.TemporalFilter, error) {
	var f contracts.TemporalFilter

	if s := strings.TrimSpace(q.Get(ParamAssessmentDate)); s != "" {
		d, err := capability.ParseDate(s)
		if err != nil {
			return f, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", ParamAssessmentDate, s)
		}
		f.AssessmentDate = &d
		return f, nil
	}

	if s := strings.TrimSpace(q.Get(ParamSurveyWave)); s != "" {
		f.SurveyWave = s
		return f, nil
	}

	if s := strings.TrimSpace(q.Get(ParamDateFrom)); s != "" {
		d, err := capability.ParseDate(s)
		if err != nil {
			return f, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", ParamDateFrom, s)
		}
		f.From = &d
	}
	if s := strings.TrimSpace(q.Get(ParamDateTo)); s != "" {
		d, err := capability.ParseDate(s)
		if err != nil {
			return f, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", ParamDateTo, s)
		}
		f.To = &d
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, fmt.Errorf("%s is after %s", ParamDateFrom, ParamDateTo)
	}

	return f, nil
}

// AppendTemporal adds the filter's predicate to a WHERE clause list
func AppendTemporal(where []string, args []interface{}, f contracts.TemporalFilter) ([]string, []interface{}) {
	switch {
	case f.AssessmentDate != nil:
		args = append(args, *f.AssessmentDate)
		where = append(where, fmt.Sprintf("assessment_date = $%d", len(args)))
	case f.SurveyWave != "":
		args = append(args, f.SurveyWave)
		where = append(where, fmt.Sprintf("survey_wave = $%d", len(args)))
	default:
		if f.From != nil {
			args = append(args, *f.From)
			where = append(where, fmt.Sprintf("assessment_date >= $%d", len(args)))
		}
		if f.To != nil {
			args = append(args, *f.To)
			where = append(where, fmt.Sprintf("assessment_date <= $%d", len(args)))
		}
	}
	return where, args
}

const scoreColumns = `
	company_id, respondent_id, dimension_id, construct_id, score,
	assessment_date, survey_wave,
	COALESCE(country_synthetic, ''), COALESCE(role_synthetic, ''),
	COALESCE(industry_synthetic, ''), COALESCE(continent_synthetic, '')`

// buildScoreQuery builds the SELECT for a company (empty = every company)
// narrowed by a temporal filter
func buildScoreQuery(companyID string, f contracts.TemporalFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if companyID != "" {
		args = append(args, companyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	where, args = AppendTemporal(where, args, f)

	var sb strings.Builder
	sb.WriteString("SELECT")
	sb.WriteString(scoreColumns)
	sb.WriteString("\nFROM capability_scores")
	if len(where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\nORDER BY id")
	return sb.String(), args
}

// buildCountQuery counts a company's distinct respondents under a temporal filter
func buildCountQuery(companyID string, f contracts.TemporalFilter) (string, []interface{}) {
	where := []string{"company_id = $1"}
	args := []interface{}{companyID}
	where, args = AppendTemporal(where, args, f)

	return "SELECT COUNT(DISTINCT respondent_id)\nFROM capability_scores\nWHERE " +
		strings.Join(where, " AND "), args
}
