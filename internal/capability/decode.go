package capability

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Column names of the long score format
const (
	ColCompanyID          = "company_id"
	ColRespondentID       = "respondent_id"
	ColDimensionID        = "dimension_id"
	ColConstructID        = "construct_id"
	ColScore              = "score"
	ColAssessmentDate     = "assessment_date"
	ColSurveyWave         = "survey_wave"
	ColCountrySynthetic   = "country_synthetic"
	ColRoleSynthetic      = "role_synthetic"
	ColIndustrySynthetic  = "industry_synthetic"
	ColContinentSynthetic = "continent_synthetic"
)

// RequiredColumns must be present in every import header
var RequiredColumns = []string{ColRespondentID, ColConstructID, ColScore}

// DecodeRecord converts a loosely typed row (decoded JSON, database map)
// into a ScoreRecord. Missing construct_id or a non-numeric score is
// ErrInvalidRecord; values are never coerced to zero.
func DecodeRecord(raw map[string]any) (contracts.ScoreRecord, error) {
	var r contracts.ScoreRecord

	constructRaw, ok := raw[ColConstructID]
	if !ok || constructRaw == nil {
		return r, fmt.Errorf("%w: missing %s", contracts.ErrInvalidRecord, ColConstructID)
	}
	construct, err := toInt(constructRaw)
	if err != nil {
		return r, fmt.Errorf("%w: %s: %v", contracts.ErrInvalidRecord, ColConstructID, err)
	}
	r.ConstructID = construct

	scoreRaw, ok := raw[ColScore]
	if !ok || scoreRaw == nil {
		return r, fmt.Errorf("%w: missing %s", contracts.ErrInvalidRecord, ColScore)
	}
	score, err := toFloat(scoreRaw)
	if err != nil {
		return r, fmt.Errorf("%w: %s: %v", contracts.ErrInvalidRecord, ColScore, err)
	}
	r.Score = score

	if v, ok := raw[ColDimensionID]; ok && v != nil {
		dim, err := toInt(v)
		if err != nil {
			return r, fmt.Errorf("%w: %s: %v", contracts.ErrInvalidRecord, ColDimensionID, err)
		}
		r.DimensionID = dim
	}

	r.RespondentID = toString(raw[ColRespondentID])
	r.CompanyID = toString(raw[ColCompanyID])
	r.SurveyWave = toString(raw[ColSurveyWave])
	r.CountrySynthetic = toString(raw[ColCountrySynthetic])
	r.RoleSynthetic = toString(raw[ColRoleSynthetic])
	r.IndustrySynthetic = toString(raw[ColIndustrySynthetic])
	r.ContinentSynthetic = toString(raw[ColContinentSynthetic])

	switch v := raw[ColAssessmentDate].(type) {
	case time.Time:
		r.AssessmentDate = v
	case string:
		if v != "" {
			d, err := ParseDate(v)
			if err != nil {
				return r, fmt.Errorf("%w: %s: %v", contracts.ErrInvalidRecord, ColAssessmentDate, err)
			}
			r.AssessmentDate = d
		}
	}

	if err := r.Validate(); err != nil {
		return r, err
	}
	if r.DimensionID == 0 {
		r.DimensionID = contracts.DimensionOf(r.ConstructID)
	}
	return r, nil
}

// Header maps column names to positions in a tabular row
type Header map[string]int

// NewHeader indexes a header row. Names are trimmed and lower-cased.
// All RequiredColumns must be present.
func NewHeader(columns []string) (Header, error) {
	h := make(Header, len(columns))
	for i, c := range columns {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
		if name == "" {
			continue
		}
		if _, dup := h[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", contracts.ErrInvalidRecord, name)
		}
		h[name] = i
	}
	for _, req := range RequiredColumns {
		if _, ok := h[req]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", contracts.ErrInvalidRecord, req)
		}
	}
	return h, nil
}

func (h Header) value(row []string, column string) (string, bool) {
	i, ok := h[column]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

// DecodeRow converts one tabular row into a ScoreRecord
func DecodeRow(h Header, row []string) (contracts.ScoreRecord, error) {
	raw := make(map[string]any, len(h))
	for column := range h {
		v, ok := h.value(row, column)
		if !ok || v == "" {
			continue
		}
		raw[column] = v
	}
	return DecodeRecord(raw)
}

// ParseDate parses a YYYY-MM-DD assessment date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(contracts.DateLayout, strings.TrimSpace(s))
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}

func toInt(v any) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	return int(f), nil
}
