package contracts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  ScoreRecord
		wantErr bool
	}{
		{"valid", ScoreRecord{RespondentID: "r1", ConstructID: 1, Score: 4}, false},
		{"valid with dimension", ScoreRecord{RespondentID: "r1", DimensionID: 8, ConstructID: 32, Score: 1}, false},
		{"missing respondent", ScoreRecord{ConstructID: 1, Score: 4}, true},
		{"construct zero", ScoreRecord{RespondentID: "r1", Score: 4}, true},
		{"construct 33", ScoreRecord{RespondentID: "r1", ConstructID: 33, Score: 4}, true},
		{"NaN score", ScoreRecord{RespondentID: "r1", ConstructID: 1, Score: math.NaN()}, true},
		{"infinite score", ScoreRecord{RespondentID: "r1", ConstructID: 1, Score: math.Inf(1)}, true},
		{"dimension mismatch", ScoreRecord{RespondentID: "r1", DimensionID: 2, ConstructID: 1, Score: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDimensionOf(t *testing.T) {
	assert.Equal(t, 1, DimensionOf(1))
	assert.Equal(t, 1, DimensionOf(4))
	assert.Equal(t, 2, DimensionOf(5))
	assert.Equal(t, 8, DimensionOf(32))
	assert.Equal(t, 0, DimensionOf(0))
	assert.Equal(t, 0, DimensionOf(33))

	assert.Equal(t, 3, ScoreRecord{ConstructID: 9}.Dimension())
	assert.Equal(t, 3, ScoreRecord{DimensionID: 3, ConstructID: 9}.Dimension())
}

func TestValidateAll_ReportsIndex(t *testing.T) {
	err := ValidateAll([]ScoreRecord{
		{RespondentID: "r1", ConstructID: 1, Score: 1},
		{RespondentID: "r1", ConstructID: 40, Score: 1},
	})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "record 1")
}

func TestTemporalFilter_Describe(t *testing.T) {
	none := TemporalFilter{}
	assert.False(t, none.Applied())
	assert.Equal(t, map[string]string{
		"assessmentDate": "latest",
		"surveyWave":     "all",
		"temporalFilter": "none",
	}, none.Describe())

	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	f := TemporalFilter{AssessmentDate: &date, SurveyWave: "wave2"}
	meta := f.Describe()
	assert.Equal(t, "2025-03-01", meta["assessmentDate"])
	assert.Equal(t, "wave2", meta["surveyWave"])
	assert.Equal(t, "applied", meta["temporalFilter"])
}

func TestBenchmarkFilters_Match(t *testing.T) {
	r := ScoreRecord{CountrySynthetic: "US", IndustrySynthetic: "Retail", ContinentSynthetic: "North America"}

	assert.True(t, BenchmarkFilters{}.Match(r))
	assert.True(t, BenchmarkFilters{Region: "US", Industry: "Retail"}.Match(r))
	assert.False(t, BenchmarkFilters{Region: "DE"}.Match(r))
	assert.False(t, BenchmarkFilters{Continent: "Europe"}.Match(r))
}

func TestCapabilityMapping_CodesSkipsEmpty(t *testing.T) {
	m := CapabilityMapping{Primary: "A1", Tertiary: "C3"}
	assert.Equal(t, [][2]string{{PriorityPrimary, "A1"}, {PriorityTertiary, "C3"}}, m.Codes())
}
