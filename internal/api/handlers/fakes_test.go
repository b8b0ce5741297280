package handlers

import (
	"context"
	"fmt"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

type fakeScores struct {
	byCompany    map[string][]contracts.ScoreRecord
	inserted     []contracts.ScoreRecord
	filters      []contracts.TemporalFilter
	countFilters []contracts.TemporalFilter
	err          error
	duplicates   []contracts.DuplicateGroup
}

func (f *fakeScores) ListByCompany(ctx context.Context, companyID string, filter contracts.TemporalFilter) ([]contracts.ScoreRecord, error) {
	f.filters = append(f.filters, filter)
	return f.byCompany[companyID], f.err
}

func (f *fakeScores) ListAll(ctx context.Context, filter contracts.TemporalFilter) ([]contracts.ScoreRecord, error) {
	all := make([]contracts.ScoreRecord, 0)
	for _, recs := range f.byCompany {
		all = append(all, recs...)
	}
	return all, f.err
}

func (f *fakeScores) CountRespondents(ctx context.Context, companyID string, filter contracts.TemporalFilter) (int, error) {
	f.countFilters = append(f.countFilters, filter)
	return uniqueRespondents(f.byCompany[companyID]), f.err
}

func (f *fakeScores) FindDuplicates(ctx context.Context) ([]contracts.DuplicateGroup, error) {
	return f.duplicates, f.err
}

func (f *fakeScores) InsertBatch(ctx context.Context, records []contracts.ScoreRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, records...)
	return int64(len(records)), nil
}

type fakeRespondents struct {
	byCompany map[string][]contracts.Respondent
	openEnded []contracts.OpenEndedResponse
	filters   []contracts.TemporalFilter
	limits    []int
	err       error
}

func (f *fakeRespondents) ListByCompany(ctx context.Context, companyID string, filter contracts.TemporalFilter) ([]contracts.Respondent, error) {
	f.filters = append(f.filters, filter)
	return f.byCompany[companyID], f.err
}

func (f *fakeRespondents) ListAll(ctx context.Context, filter contracts.TemporalFilter) ([]contracts.Respondent, error) {
	all := make([]contracts.Respondent, 0)
	for _, list := range f.byCompany {
		all = append(all, list...)
	}
	return all, f.err
}

func (f *fakeRespondents) ListOpenEnded(ctx context.Context, companyID string, filter contracts.TemporalFilter, limit int) ([]contracts.OpenEndedResponse, error) {
	f.filters = append(f.filters, filter)
	f.limits = append(f.limits, limit)
	return f.openEnded, f.err
}

func (f *fakeRespondents) InsertBatch(ctx context.Context, respondents []contracts.Respondent) (int64, error) {
	return int64(len(respondents)), f.err
}

type fakeCompanies struct {
	companies map[string]contracts.Company
	upserted  []string
}

func (f *fakeCompanies) GetByID(ctx context.Context, id string) (*contracts.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, fmt.Errorf("company %s: %w", id, contracts.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeCompanies) Upsert(ctx context.Context, c *contracts.Company) error {
	f.upserted = append(f.upserted, c.ID)
	return nil
}

type fakePeriods struct {
	list    []contracts.AssessmentPeriod
	created []contracts.AssessmentPeriod
	err     error
}

func (f *fakePeriods) ListByCompany(ctx context.Context, companyID string) ([]contracts.AssessmentPeriod, error) {
	return f.list, f.err
}

func (f *fakePeriods) Create(ctx context.Context, p *contracts.AssessmentPeriod) error {
	if f.err != nil {
		return f.err
	}
	p.ID = int64(len(f.created) + 1)
	p.Status = contracts.PeriodStatusActive
	f.created = append(f.created, *p)
	return nil
}

type fakeCatalogue struct {
	interventions map[string]contracts.Intervention
	dimensions    map[int]contracts.CapabilityMapping
	cells         map[int]contracts.CellMapping
	taboos        []contracts.Taboo
}

func (f *fakeCatalogue) List(ctx context.Context) ([]contracts.Intervention, error) {
	out := make([]contracts.Intervention, 0, len(f.interventions))
	for _, iv := range f.interventions {
		out = append(out, iv)
	}
	return out, nil
}

func (f *fakeCatalogue) GetByCode(ctx context.Context, code string) (*contracts.Intervention, error) {
	iv, ok := f.interventions[code]
	if !ok {
		return nil, fmt.Errorf("intervention %s: %w", code, contracts.ErrNotFound)
	}
	return &iv, nil
}

func (f *fakeCatalogue) GetByCodes(ctx context.Context, codes []string) (map[string]contracts.Intervention, error) {
	out := make(map[string]contracts.Intervention)
	for _, c := range codes {
		if iv, ok := f.interventions[c]; ok {
			out[c] = iv
		}
	}
	return out, nil
}

func (f *fakeCatalogue) CapabilityMapping(ctx context.Context, dimensionID int) (*contracts.CapabilityMapping, error) {
	m, ok := f.dimensions[dimensionID]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return &m, nil
}

func (f *fakeCatalogue) CellMapping(ctx context.Context, levelID, categoryID int) (*contracts.CellMapping, error) {
	m, ok := f.cells[contracts.SentimentIndex(levelID, categoryID)]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return &m, nil
}

func (f *fakeCatalogue) NextSteps(ctx context.Context, code string) (*contracts.NextSteps, error) {
	return nil, contracts.ErrNotFound
}

func (f *fakeCatalogue) ListByCell(ctx context.Context, levelID, categoryID int) ([]contracts.Taboo, error) {
	return f.taboos, nil
}

type fakeCompleter struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.prompts = append(f.prompts, user)
	return f.answer, f.err
}

func (f *fakeCompleter) Model() string { return "test-model" }
