package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/config"
)

func TestTransform_Empty(t *testing.T) {
	tr := NewTransformer(DefaultConfig())

	rows, err := tr.Transform(nil)
	require.NoError(t, err)
	require.NotNil(t, rows)
	assert.Empty(t, rows)

	data, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestTransform_Scenario(t *testing.T) {
	scores := []contracts.ScoreRecord{
		{RespondentID: "r1", ConstructID: 1, Score: 4, CountrySynthetic: "US"},
		{RespondentID: "r1", ConstructID: 2, Score: 2},
	}

	rows, err := NewTransformer(DefaultConfig()).Transform(scores)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	data, err := json.Marshal(rows[0])
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "r1", got["RespondentID"])
	assert.Equal(t, "US", got["Region"])
	assert.Contains(t, got, "Department")
	assert.Nil(t, got["Department"])
	assert.Contains(t, got, "Age")
	assert.Nil(t, got["Age"])
	assert.Equal(t, 4.0, got["construct_1"])
	assert.Equal(t, 2.0, got["construct_2"])
	assert.NotContains(t, got, "construct_3")
	assert.Equal(t, "EN", got["UserLanguage"])
}

func TestTransform_DemographicsFromFirstRecord(t *testing.T) {
	scores := []contracts.ScoreRecord{
		{RespondentID: "r1", ConstructID: 1, Score: 1, RoleSynthetic: "Manager", IndustrySynthetic: "Retail", ContinentSynthetic: "Europe"},
		{RespondentID: "r1", ConstructID: 2, Score: 1, CountrySynthetic: "NL", RoleSynthetic: "Engineer"},
	}

	rows, err := NewTransformer(Config{UserLanguage: "NL"}).Transform(scores)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, DefaultRegion, row.Region)
	require.NotNil(t, row.EmploymentType)
	assert.Equal(t, "Manager", *row.EmploymentType)
	assert.Equal(t, "Manager", *row.Role)
	assert.Equal(t, "Retail", *row.Industry)
	assert.Equal(t, "Europe", *row.Continent)
	assert.Equal(t, "NL", row.UserLanguage)
}

func TestTransform_OneRowPerRespondentInFirstAppearanceOrder(t *testing.T) {
	scores := []contracts.ScoreRecord{
		{RespondentID: "r2", ConstructID: 1, Score: 3},
		{RespondentID: "r1", ConstructID: 1, Score: 4},
		{RespondentID: "r2", ConstructID: 2, Score: 5},
		{RespondentID: "r3", ConstructID: 1, Score: 1},
		{RespondentID: "r1", ConstructID: 2, Score: 2},
	}

	rows, err := NewTransformer(DefaultConfig()).Transform(scores)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "r2", rows[0].RespondentID)
	assert.Equal(t, "r1", rows[1].RespondentID)
	assert.Equal(t, "r3", rows[2].RespondentID)
	assert.Equal(t, map[int]float64{1: 3, 2: 5}, rows[0].Constructs)
}

func TestTransform_RowCountEqualsDistinctRespondents(t *testing.T) {
	var scores []contracts.ScoreRecord
	respondents := []string{"a", "b", "c", "d", "e"}
	for _, r := range respondents {
		for c := 1; c <= contracts.MaxConstructID; c += 3 {
			scores = append(scores, contracts.ScoreRecord{RespondentID: r, ConstructID: c, Score: float64(c % 5)})
		}
	}

	rows, err := NewTransformer(DefaultConfig()).Transform(scores)
	require.NoError(t, err)
	assert.Len(t, rows, len(respondents))
}

// Two records for the same respondent and construct: the later one wins.
func TestTransform_LastWinsOverwrite(t *testing.T) {
	scores := []contracts.ScoreRecord{
		{RespondentID: "r1", ConstructID: 7, Score: 1}, // A
		{RespondentID: "r1", ConstructID: 7, Score: 5}, // B
	}

	rows, err := NewTransformer(Config{MergePolicy: MergeLastWins}).Transform(scores)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	score, ok := rows[0].Score(7)
	require.True(t, ok)
	assert.Equal(t, 5.0, score)

	reversed, err := NewTransformer(Config{MergePolicy: MergeLastWins}).Transform([]contracts.ScoreRecord{scores[1], scores[0]})
	require.NoError(t, err)
	score, _ = reversed[0].Score(7)
	assert.Equal(t, 1.0, score)
}

func TestTransform_ErrorOnDuplicate(t *testing.T) {
	tr := NewTransformer(Config{MergePolicy: MergeErrorOnDuplicate})

	_, err := tr.Transform([]contracts.ScoreRecord{
		{RespondentID: "r1", ConstructID: 7, Score: 1},
		{RespondentID: "r2", ConstructID: 7, Score: 1},
		{RespondentID: "r1", ConstructID: 7, Score: 5},
	})
	assert.ErrorIs(t, err, ErrDuplicateScore)
	assert.Contains(t, err.Error(), "record 2")

	rows, err := tr.Transform([]contracts.ScoreRecord{
		{RespondentID: "r1", ConstructID: 7, Score: 1},
		{RespondentID: "r1", ConstructID: 8, Score: 5},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTransform_InvalidRecord(t *testing.T) {
	_, err := NewTransformer(DefaultConfig()).Transform([]contracts.ScoreRecord{
		{RespondentID: "r1", ConstructID: 99, Score: 1},
	})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)
}

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MergePolicy
		wantErr bool
	}{
		{"", MergeLastWins, false},
		{"last_wins", MergeLastWins, false},
		{"error", MergeErrorOnDuplicate, false},
		{"first_wins", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMergePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg, err := ConfigFrom(config.TransformConfig{MergePolicy: "error", UserLanguage: "DE"})
	require.NoError(t, err)
	assert.Equal(t, MergeErrorOnDuplicate, cfg.MergePolicy)
	assert.Equal(t, "DE", cfg.UserLanguage)

	_, err = ConfigFrom(config.TransformConfig{MergePolicy: "bogus"})
	assert.Error(t, err)
}
