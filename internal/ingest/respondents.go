package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/ainavigator/backend/internal/capability"
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Respondent file columns, matched after lower-casing and dropping
// underscores and spaces, so "Employment_type" and "employment type" agree
const (
	colRespondentID   = "respondentid"
	colCompanyID      = "companyid"
	colRegion         = "region"
	colDepartment     = "department"
	colEmploymentType = "employmenttype"
	colAge            = "age"
	colUserLanguage   = "userlanguage"
	colIndustry       = "industry"
	colContinent      = "continent"
	colAssessmentDate = "assessmentdate"
	colSurveyWave     = "surveywave"
	colAchievements   = "q39achievements"
	colChallenges     = "q40challenges"
	colFutureGoals    = "q41futuregoals"
)

// ReadRespondents parses a sentiment survey export: one respondent per row
// with sentiment_1..sentiment_25 columns. Blank cells are unanswered.
func ReadRespondents(r io.Reader, format Format, defaults Defaults) ([]contracts.Respondent, error) {
	d := &respondentDecoder{defaults: defaults, respondents: make([]contracts.Respondent, 0)}
	if err := readRows(r, format, d); err != nil {
		return nil, err
	}
	return d.respondents, nil
}

type respondentDecoder struct {
	columns     map[string]int
	sentiment   map[int]int // sentiment index -> column position
	defaults    Defaults
	respondents []contracts.Respondent
}

func normalizeColumn(c string) string {
	c = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
	return strings.NewReplacer("_", "", " ", "").Replace(c)
}

func (d *respondentDecoder) setHeader(columns []string) error {
	d.columns = make(map[string]int, len(columns))
	d.sentiment = make(map[int]int, contracts.SentimentCellCount)
	for i, c := range columns {
		name := normalizeColumn(c)
		if name == "" {
			continue
		}
		if _, dup := d.columns[name]; dup {
			return fmt.Errorf("header: %w: duplicate column %q", contracts.ErrInvalidRecord, c)
		}
		d.columns[name] = i

		if rest, ok := strings.CutPrefix(name, "sentiment"); ok {
			idx, err := strconv.Atoi(rest)
			if err != nil || idx < 1 || idx > contracts.SentimentCellCount {
				return fmt.Errorf("header: %w: unknown sentiment column %q", contracts.ErrInvalidRecord, c)
			}
			d.sentiment[idx] = i
		}
	}
	if _, ok := d.columns[colRespondentID]; !ok {
		return fmt.Errorf("header: %w: missing required column %q", contracts.ErrInvalidRecord, "respondent_id")
	}
	if len(d.sentiment) == 0 && !d.hasOpenEndedColumns() {
		return fmt.Errorf("header: %w: no sentiment or open-ended columns", contracts.ErrInvalidRecord)
	}
	return nil
}

func (d *respondentDecoder) hasOpenEndedColumns() bool {
	for _, c := range []string{colAchievements, colChallenges, colFutureGoals} {
		if _, ok := d.columns[c]; ok {
			return true
		}
	}
	return false
}

func (d *respondentDecoder) value(row []string, column string) string {
	i, ok := d.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (d *respondentDecoder) text(row []string, column string) *string {
	v := d.value(row, column)
	if v == "" {
		return nil
	}
	return &v
}

func (d *respondentDecoder) add(line int, row []string) error {
	if blank(row) {
		return nil
	}

	rec := contracts.Respondent{
		CompanyID:      d.value(row, colCompanyID),
		RespondentID:   d.value(row, colRespondentID),
		Region:         d.value(row, colRegion),
		Department:     d.value(row, colDepartment),
		EmploymentType: d.value(row, colEmploymentType),
		Age:            d.value(row, colAge),
		UserLanguage:   d.value(row, colUserLanguage),
		Industry:       d.value(row, colIndustry),
		Continent:      d.value(row, colContinent),
		SurveyWave:     d.value(row, colSurveyWave),
		Sentiment:      make(map[int]float64, len(d.sentiment)),
		Achievements:   d.text(row, colAchievements),
		Challenges:     d.text(row, colChallenges),
		FutureGoals:    d.text(row, colFutureGoals),
	}

	if s := d.value(row, colAssessmentDate); s != "" {
		date, err := capability.ParseDate(s)
		if err != nil {
			return fmt.Errorf("line %d: %w: assessment_date %q", line, contracts.ErrInvalidRecord, s)
		}
		rec.AssessmentDate = date
	}

	for idx, col := range d.sentiment {
		if col >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[col])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w: %s is not a number: %q",
				line, contracts.ErrInvalidRecord, contracts.SentimentColumn(idx), raw)
		}
		rec.Sentiment[idx] = v
	}

	if err := d.defaults.apply(line, &rec.CompanyID, &rec.SurveyWave, &rec.AssessmentDate); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}

	d.respondents = append(d.respondents, rec)
	return nil
}
