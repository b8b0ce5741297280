package contracts

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Construct and dimension bounds of the capability assessment
const (
	MinConstructID         = 1
	MaxConstructID         = 32
	DimensionCount         = 8
	ConstructsPerDimension = 4
)

// ErrInvalidRecord is returned when a score record has the wrong shape
// (missing construct id, non-numeric score, ...). It is fatal to the call.
var ErrInvalidRecord = errors.New("invalid record shape")

// ErrNotFound is returned by lookups that match nothing
var ErrNotFound = errors.New("not found")

// ScoreRecord is one respondent's score for one construct (long format)
// ⭐ SSOT: row shape of capability_scores
type ScoreRecord struct {
	CompanyID          string    `json:"company_id"`
	RespondentID       string    `json:"respondent_id"`
	DimensionID        int       `json:"dimension_id"`
	ConstructID        int       `json:"construct_id"`
	Score              float64   `json:"score"`
	AssessmentDate     time.Time `json:"assessment_date"`
	SurveyWave         string    `json:"survey_wave"`
	CountrySynthetic   string    `json:"country_synthetic,omitempty"`
	RoleSynthetic      string    `json:"role_synthetic,omitempty"`
	IndustrySynthetic  string    `json:"industry_synthetic,omitempty"`
	ContinentSynthetic string    `json:"continent_synthetic,omitempty"`
}

// Validate checks the record shape. Errors wrap ErrInvalidRecord.
func (r ScoreRecord) Validate() error {
	if r.RespondentID == "" {
		return fmt.Errorf("%w: missing respondent_id", ErrInvalidRecord)
	}
	if r.ConstructID < MinConstructID || r.ConstructID > MaxConstructID {
		return fmt.Errorf("%w: construct_id %d out of range %d..%d",
			ErrInvalidRecord, r.ConstructID, MinConstructID, MaxConstructID)
	}
	if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
		return fmt.Errorf("%w: score for construct %d is not a finite number", ErrInvalidRecord, r.ConstructID)
	}
	if r.DimensionID != 0 && r.DimensionID != DimensionOf(r.ConstructID) {
		return fmt.Errorf("%w: construct %d does not belong to dimension %d",
			ErrInvalidRecord, r.ConstructID, r.DimensionID)
	}
	return nil
}

// Dimension returns the record's dimension, deriving it from the construct when unset
func (r ScoreRecord) Dimension() int {
	if r.DimensionID != 0 {
		return r.DimensionID
	}
	return DimensionOf(r.ConstructID)
}

// DimensionOf maps construct 1..32 to dimension 1..8 (four constructs each)
func DimensionOf(constructID int) int {
	if constructID < MinConstructID || constructID > MaxConstructID {
		return 0
	}
	return (constructID-1)/ConstructsPerDimension + 1
}

// ValidateAll validates every record and reports the first bad index
func ValidateAll(records []ScoreRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// TemporalFilter narrows a score query in time.
// Precedence: AssessmentDate, then SurveyWave, then the From/To range.
type TemporalFilter struct {
	AssessmentDate *time.Time
	SurveyWave     string
	From           *time.Time
	To             *time.Time
}

// Applied reports whether any temporal constraint is active
func (f TemporalFilter) Applied() bool {
	return f.AssessmentDate != nil || f.SurveyWave != "" || f.From != nil || f.To != nil
}

// Describe returns response metadata for the filter
func (f TemporalFilter) Describe() map[string]string {
	meta := map[string]string{
		"assessmentDate": "latest",
		"surveyWave":     "all",
		"temporalFilter": "none",
	}
	if f.AssessmentDate != nil {
		meta["assessmentDate"] = f.AssessmentDate.Format(DateLayout)
	}
	if f.SurveyWave != "" {
		meta["surveyWave"] = f.SurveyWave
	}
	if f.Applied() {
		meta["temporalFilter"] = "applied"
	}
	return meta
}

// DateLayout is the wire format of assessment dates
const DateLayout = "2006-01-02"

// DuplicateGroup is a (company, respondent, construct, wave) key with more than one row
type DuplicateGroup struct {
	CompanyID    string `json:"company_id"`
	RespondentID string `json:"respondent_id"`
	ConstructID  int    `json:"construct_id"`
	SurveyWave   string `json:"survey_wave"`
	Rows         int    `json:"rows"`
}
