package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ConstructColumnPrefix prefixes construct columns in wide rows
const ConstructColumnPrefix = "construct_"

// WideRow is one respondent's scores pivoted into columns.
// Department and Age are not part of the score schema and always encode as null.
type WideRow struct {
	RespondentID   string
	Region         string
	EmploymentType *string
	UserLanguage   string
	Industry       *string
	Continent      *string
	Role           *string
	Constructs     map[int]float64
}

// ConstructColumn returns the column name for a construct id
func ConstructColumn(constructID int) string {
	return ConstructColumnPrefix + strconv.Itoa(constructID)
}

// ConstructIDs returns the row's construct ids in ascending order
func (w WideRow) ConstructIDs() []int {
	ids := make([]int, 0, len(w.Constructs))
	for id := range w.Constructs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Score returns the row's score for a construct
func (w WideRow) Score(constructID int) (float64, bool) {
	v, ok := w.Constructs[constructID]
	return v, ok
}

// MarshalJSON writes the fixed demographic columns first, then construct_<n> ascending
func (w WideRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	fields := []struct {
		key   string
		value interface{}
	}{
		{"RespondentID", w.RespondentID},
		{"Region", w.Region},
		{"Department", nil},
		{"Employment_type", w.EmploymentType},
		{"Age", nil},
		{"UserLanguage", w.UserLanguage},
		{"Industry", w.Industry},
		{"Continent", w.Continent},
		{"Role", w.Role},
	}

	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, f.key, f.value); err != nil {
			return nil, err
		}
	}

	for _, id := range w.ConstructIDs() {
		buf.WriteByte(',')
		if err := writeField(&buf, ConstructColumn(id), w.Constructs[id]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value interface{}) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON accepts the layout written by MarshalJSON
func (w *WideRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := WideRow{Constructs: make(map[int]float64)}
	for key, value := range raw {
		var err error
		switch key {
		case "RespondentID":
			err = json.Unmarshal(value, &out.RespondentID)
		case "Region":
			err = json.Unmarshal(value, &out.Region)
		case "Employment_type":
			err = json.Unmarshal(value, &out.EmploymentType)
		case "UserLanguage":
			err = json.Unmarshal(value, &out.UserLanguage)
		case "Industry":
			err = json.Unmarshal(value, &out.Industry)
		case "Continent":
			err = json.Unmarshal(value, &out.Continent)
		case "Role":
			err = json.Unmarshal(value, &out.Role)
		case "Department", "Age":
		default:
			if !strings.HasPrefix(key, ConstructColumnPrefix) {
				continue
			}
			id, convErr := strconv.Atoi(strings.TrimPrefix(key, ConstructColumnPrefix))
			if convErr != nil || DimensionOf(id) == 0 {
				return fmt.Errorf("%w: unknown column %q", ErrInvalidRecord, key)
			}
			var score float64
			if err = json.Unmarshal(value, &score); err == nil {
				out.Constructs[id] = score
			}
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}

	*w = out
	return nil
}
