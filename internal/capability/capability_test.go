package capability

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

func TestDimensions_Catalogue(t *testing.T) {
	dims := Dimensions()
	require.Len(t, dims, contracts.DimensionCount)

	seen := make(map[int]bool)
	for i, d := range dims {
		assert.Equal(t, i+1, d.ID)
		assert.NotEmpty(t, d.Name)
		for _, c := range d.Constructs {
			assert.Equal(t, d.ID, contracts.DimensionOf(c))
			seen[c] = true
		}
	}
	assert.Len(t, seen, contracts.MaxConstructID)
}

func TestDimensionLookup(t *testing.T) {
	assert.Equal(t, "Adaptation & Adoption", DimensionName(7))
	assert.Equal(t, "", DimensionName(9))

	c, ok := ConstructByID(28)
	require.True(t, ok)
	assert.Equal(t, 7, c.DimensionID)
	assert.Equal(t, "Confidence/Authority", c.Name)

	_, ok = ConstructByID(0)
	assert.False(t, ok)

	assert.Len(t, Constructs(2), 4)
	assert.Nil(t, Constructs(0))
}

func TestDecodeRecord(t *testing.T) {
	r, err := DecodeRecord(map[string]any{
		"respondent_id":     "r1",
		"construct_id":      float64(6),
		"score":             json.Number("3.5"),
		"country_synthetic": "US",
		"assessment_date":   "2025-01-15",
		"survey_wave":       "baseline",
	})
	require.NoError(t, err)

	assert.Equal(t, "r1", r.RespondentID)
	assert.Equal(t, 6, r.ConstructID)
	assert.Equal(t, 2, r.DimensionID)
	assert.Equal(t, 3.5, r.Score)
	assert.Equal(t, "US", r.CountrySynthetic)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), r.AssessmentDate)
}

func TestDecodeRecord_InvalidShape(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"missing construct", map[string]any{"respondent_id": "r1", "score": 1}},
		{"null construct", map[string]any{"respondent_id": "r1", "construct_id": nil, "score": 1}},
		{"missing score", map[string]any{"respondent_id": "r1", "construct_id": 1}},
		{"string score", map[string]any{"respondent_id": "r1", "construct_id": 1, "score": "high"}},
		{"bool score", map[string]any{"respondent_id": "r1", "construct_id": 1, "score": true}},
		{"fractional construct", map[string]any{"respondent_id": "r1", "construct_id": 1.5, "score": 1}},
		{"construct out of range", map[string]any{"respondent_id": "r1", "construct_id": 33, "score": 1}},
		{"bad date", map[string]any{"respondent_id": "r1", "construct_id": 1, "score": 1, "assessment_date": "15/01/2025"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.raw)
			assert.ErrorIs(t, err, contracts.ErrInvalidRecord)
		})
	}
}

func TestNewHeader(t *testing.T) {
	h, err := NewHeader([]string{"\ufeffRespondent_ID", " construct_id ", "score", ""})
	require.NoError(t, err)
	assert.Equal(t, 0, h[ColRespondentID])
	assert.Equal(t, 1, h[ColConstructID])

	_, err = NewHeader([]string{"respondent_id", "score"})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)

	_, err = NewHeader([]string{"respondent_id", "construct_id", "score", "score"})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)
}

func TestDecodeRow(t *testing.T) {
	h, err := NewHeader([]string{"respondent_id", "construct_id", "score", "industry_synthetic"})
	require.NoError(t, err)

	r, err := DecodeRow(h, []string{"r9", "32", "4", "Retail"})
	require.NoError(t, err)
	assert.Equal(t, 8, r.DimensionID)
	assert.Equal(t, "Retail", r.IndustrySynthetic)

	_, err = DecodeRow(h, []string{"r9", "", "4"})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)

	_, err = DecodeRow(h, []string{"r9", "3", "n/a"})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)
}
