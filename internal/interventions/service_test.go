package interventions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

type fakeRepo struct {
	interventions map[string]contracts.Intervention
	capability    map[int]contracts.CapabilityMapping
	cells         map[[2]int]contracts.CellMapping
	next          map[string]contracts.NextSteps
	taboos        []contracts.Taboo
}

func (f *fakeRepo) List(ctx context.Context) ([]contracts.Intervention, error) {
	out := make([]contracts.Intervention, 0, len(f.interventions))
	for _, iv := range f.interventions {
		out = append(out, iv)
	}
	return out, nil
}

func (f *fakeRepo) GetByCode(ctx context.Context, code string) (*contracts.Intervention, error) {
	iv, ok := f.interventions[code]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return &iv, nil
}

func (f *fakeRepo) GetByCodes(ctx context.Context, codes []string) (map[string]contracts.Intervention, error) {
	out := make(map[string]contracts.Intervention)
	for _, c := range codes {
		if iv, ok := f.interventions[c]; ok {
			out[c] = iv
		}
	}
	return out, nil
}

func (f *fakeRepo) CapabilityMapping(ctx context.Context, dimensionID int) (*contracts.CapabilityMapping, error) {
	m, ok := f.capability[dimensionID]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return &m, nil
}

func (f *fakeRepo) CellMapping(ctx context.Context, levelID, categoryID int) (*contracts.CellMapping, error) {
	m, ok := f.cells[[2]int{levelID, categoryID}]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return &m, nil
}

func (f *fakeRepo) NextSteps(ctx context.Context, code string) (*contracts.NextSteps, error) {
	ns, ok := f.next[code]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return &ns, nil
}

func (f *fakeRepo) ListByCell(ctx context.Context, levelID, categoryID int) ([]contracts.Taboo, error) {
	var out []contracts.Taboo
	for _, t := range f.taboos {
		if t.LevelID == levelID && t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		interventions: map[string]contracts.Intervention{
			"S1": {Code: "S1", Name: "AI Strategy Sprint", Level: "Strategic"},
			"D2": {Code: "D2", Name: "Data Quality Program", Level: "Operational"},
			"T3": {Code: "T3", Name: "Platform Pilot", Level: "Tactical"},
		},
		capability: map[int]contracts.CapabilityMapping{
			2: {DimensionID: 2, DimensionName: "Data", Rationale: "fix the data first", Primary: "D2", Secondary: "S1", Tertiary: "T3"},
		},
		cells: map[[2]int]contracts.CellMapping{
			{3, 4}: {LevelID: 3, CategoryID: 4, LevelName: "Team", Category: "Trust", Reason: "low trust", Primary: "T3", Secondary: "MISSING", Tertiary: "S1"},
		},
		next: map[string]contracts.NextSteps{
			"S1": {InterventionCode: "S1", Rationale: "build on strategy", NextCodes: []string{"T3", "D2"}},
		},
		taboos: []contracts.Taboo{
			{ID: 1, LevelID: 1, CategoryID: 2, Name: "Fear of replacement"},
		},
	}
}

func TestService_ForDimension(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeRepo())

	rec, err := svc.ForDimension(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "Data", rec.DimensionName)
	require.Len(t, rec.Interventions, 3)
	assert.Equal(t, "D2", rec.Interventions[0].Code)
	assert.Equal(t, contracts.PriorityPrimary, rec.Interventions[0].Priority)
	assert.Equal(t, contracts.PrioritySecondary, rec.Interventions[1].Priority)
	assert.Equal(t, contracts.PriorityTertiary, rec.Interventions[2].Priority)
}

func TestService_ForDimensionErrors(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeRepo())

	_, err := svc.ForDimension(context.Background(), 9)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = svc.ForDimension(context.Background(), 1)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestService_ForCellSkipsUnknownCodes(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeRepo())

	rec, err := svc.ForCell(context.Background(), 3, 4)
	require.NoError(t, err)

	assert.Equal(t, "low trust", rec.Rationale)
	require.Len(t, rec.Interventions, 2)
	assert.Equal(t, "T3", rec.Interventions[0].Code)
	assert.Equal(t, contracts.PriorityTertiary, rec.Interventions[1].Priority)

	_, err = svc.ForCell(context.Background(), 0, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = svc.ForCell(context.Background(), 3, 6)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestService_Detail(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeRepo())

	d, err := svc.Detail(context.Background(), " s1 ")
	require.NoError(t, err)
	assert.Equal(t, "AI Strategy Sprint", d.Name)
	require.NotNil(t, d.NextSteps)
	require.Len(t, d.NextSteps.Interventions, 2)
	assert.Equal(t, "T3", d.NextSteps.Interventions[0].Code)
	assert.Equal(t, "D2", d.NextSteps.Interventions[1].Code)

	d, err = svc.Detail(context.Background(), "D2")
	require.NoError(t, err)
	assert.Nil(t, d.NextSteps)

	_, err = svc.Detail(context.Background(), "ZZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestService_Taboos(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakeRepo())

	taboos, err := svc.Taboos(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, taboos, 1)

	_, err = svc.Taboos(context.Background(), 2, 2)
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = svc.Taboos(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
