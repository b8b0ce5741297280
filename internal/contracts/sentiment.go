package contracts

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Sentiment heatmap shape: five resistance levels by five reasons
const (
	SentimentLevels     = 5
	SentimentCategories = 5
	SentimentCellCount  = SentimentLevels * SentimentCategories
)

// SentimentColumnPrefix prefixes sentiment columns in respondent rows
const SentimentColumnPrefix = "sentiment_"

// SentimentIndex maps a heatmap cell to its 1-based column index, row-major:
// level 1 holds sentiment_1..5, level 2 sentiment_6..10 and so on.
// It returns 0 for a cell outside the grid.
func SentimentIndex(level, category int) int {
	if level < MinHeatmapIndex || level > SentimentLevels ||
		category < MinHeatmapIndex || category > SentimentCategories {
		return 0
	}
	return (level-1)*SentimentCategories + category
}

// SentimentCell is the inverse of SentimentIndex
func SentimentCell(index int) (level, category int) {
	if index < 1 || index > SentimentCellCount {
		return 0, 0
	}
	return (index-1)/SentimentCategories + 1, (index-1)%SentimentCategories + 1
}

// SentimentColumn returns the column name of a sentiment index
func SentimentColumn(index int) string {
	return SentimentColumnPrefix + strconv.Itoa(index)
}

// CellKey returns the "L<level>_C<category>" key of a heatmap cell
func CellKey(level, category int) string {
	return fmt.Sprintf("L%d_C%d", level, category)
}

// Respondent is one sentiment survey response with its demographics and
// open-ended answers.
// ⭐ SSOT: row shape of respondents
type Respondent struct {
	CompanyID      string          `json:"company_id"`
	RespondentID   string          `json:"respondent_id"`
	Region         string          `json:"region,omitempty"`
	Department     string          `json:"department,omitempty"`
	EmploymentType string          `json:"employment_type,omitempty"`
	Age            string          `json:"age,omitempty"`
	UserLanguage   string          `json:"user_language,omitempty"`
	Industry       string          `json:"industry,omitempty"`
	Continent      string          `json:"continent,omitempty"`
	AssessmentDate time.Time       `json:"assessment_date"`
	SurveyWave     string          `json:"survey_wave"`
	Sentiment      map[int]float64 `json:"sentiment"`
	Achievements   *string         `json:"q39_achievements,omitempty"`
	Challenges     *string         `json:"q40_challenges,omitempty"`
	FutureGoals    *string         `json:"q41_future_goals,omitempty"`
}

// Validate checks the response shape. Errors wrap ErrInvalidRecord.
// Missing sentiment cells are allowed; present ones must be finite.
func (r Respondent) Validate() error {
	if r.RespondentID == "" {
		return fmt.Errorf("%w: missing respondent_id", ErrInvalidRecord)
	}
	for idx, v := range r.Sentiment {
		if idx < 1 || idx > SentimentCellCount {
			return fmt.Errorf("%w: sentiment index %d out of range 1..%d", ErrInvalidRecord, idx, SentimentCellCount)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidRecord, SentimentColumn(idx))
		}
	}
	return nil
}

// HasOpenEnded reports whether at least one open-ended answer is present
func (r Respondent) HasOpenEnded() bool {
	return r.Achievements != nil || r.Challenges != nil || r.FutureGoals != nil
}

// SentimentFilters are exact-match predicates on the peer respondents.
// An empty field imposes no constraint.
type SentimentFilters struct {
	Region     string `json:"region,omitempty"`
	Department string `json:"department,omitempty"`
	Industry   string `json:"industry,omitempty"`
}

// Match reports whether a respondent passes every provided filter
func (f SentimentFilters) Match(r Respondent) bool {
	if f.Region != "" && r.Region != f.Region {
		return false
	}
	if f.Department != "" && r.Department != f.Department {
		return false
	}
	if f.Industry != "" && r.Industry != f.Industry {
		return false
	}
	return true
}

// SentimentBenchmark compares a company's resistance heatmap to its peers.
// Lower scores mean less resistance. Peer-derived fields are nil when no
// peer respondent survives the filters.
type SentimentBenchmark struct {
	OverallAverage      *float64           `json:"overallAverage"`
	CellAverages        map[string]float64 `json:"cellAverages"`
	CompanyCellAverages map[string]float64 `json:"companyCellAverages"`
	CompanyScore        *float64           `json:"companyScore"`
	CompanyVsBenchmark  *float64           `json:"companyVsBenchmark"`
	Percentile          *float64           `json:"percentile"`
	Passed              *bool              `json:"passed"`
	PeerCompanies       int                `json:"peerCompanies"`
	PeerRespondents     int                `json:"peerRespondents"`
	CompanyRespondents  int                `json:"companyRespondents"`
	RegionAverages      map[string]float64 `json:"regionAverages"`
	DepartmentAverages  map[string]float64 `json:"departmentAverages"`
	FiltersApplied      SentimentFilters   `json:"filtersApplied"`
}

// OpenEndedResponse is one respondent's answers to the three free-text questions
type OpenEndedResponse struct {
	RespondentID   string    `json:"respondent_id"`
	Department     string    `json:"department,omitempty"`
	Region         string    `json:"region,omitempty"`
	SurveyWave     string    `json:"survey_wave"`
	AssessmentDate time.Time `json:"assessment_date"`
	Achievements   *string   `json:"q39_achievements"`
	Challenges     *string   `json:"q40_challenges"`
	FutureGoals    *string   `json:"q41_future_goals"`
}

// SentimentRow renders a respondent in the heatmap layout: demographics
// first, then sentiment_1..sentiment_25 with null for unanswered cells
type SentimentRow struct {
	Respondent
}

// MarshalJSON writes the fixed demographic columns first, then every sentiment column
func (s SentimentRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	fields := []struct {
		key   string
		value interface{}
	}{
		{"RespondentID", s.RespondentID},
		{"Region", nullable(s.Region)},
		{"Department", nullable(s.Department)},
		{"Employment_type", nullable(s.EmploymentType)},
		{"Age", nullable(s.Age)},
		{"UserLanguage", nullable(s.UserLanguage)},
		{"Industry", nullable(s.Industry)},
		{"Continent", nullable(s.Continent)},
	}
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, f.key, f.value); err != nil {
			return nil, err
		}
	}

	for idx := 1; idx <= SentimentCellCount; idx++ {
		buf.WriteByte(',')
		var value interface{}
		if v, ok := s.Sentiment[idx]; ok {
			value = v
		}
		if err := writeField(&buf, SentimentColumn(idx), value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
