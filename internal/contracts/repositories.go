package contracts

import (
	"context"
)

// ⭐ SSOT: repository interfaces are defined here only

// ScoreRepository reads and writes long-format capability scores
type ScoreRepository interface {
	ListByCompany(ctx context.Context, companyID string, filter TemporalFilter) ([]ScoreRecord, error)
	ListAll(ctx context.Context, filter TemporalFilter) ([]ScoreRecord, error)
	CountRespondents(ctx context.Context, companyID string, filter TemporalFilter) (int, error)
	FindDuplicates(ctx context.Context) ([]DuplicateGroup, error)
	InsertBatch(ctx context.Context, records []ScoreRecord) (int64, error)
}

// CompanyRepository reads tenant metadata
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*Company, error)
	Upsert(ctx context.Context, company *Company) error
}

// InterventionRepository reads the intervention catalogue and its mappings
type InterventionRepository interface {
	List(ctx context.Context) ([]Intervention, error)
	GetByCode(ctx context.Context, code string) (*Intervention, error)
	GetByCodes(ctx context.Context, codes []string) (map[string]Intervention, error)
	CapabilityMapping(ctx context.Context, dimensionID int) (*CapabilityMapping, error)
	CellMapping(ctx context.Context, levelID, categoryID int) (*CellMapping, error)
	NextSteps(ctx context.Context, code string) (*NextSteps, error)
}

// TabooRepository reads taboos for heatmap cells
type TabooRepository interface {
	ListByCell(ctx context.Context, levelID, categoryID int) ([]Taboo, error)
}

// PeriodRepository reads and writes assessment periods
type PeriodRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]AssessmentPeriod, error)
	Create(ctx context.Context, period *AssessmentPeriod) error
}

// RespondentRepository reads and writes sentiment survey responses
type RespondentRepository interface {
	ListByCompany(ctx context.Context, companyID string, filter TemporalFilter) ([]Respondent, error)
	ListAll(ctx context.Context, filter TemporalFilter) ([]Respondent, error)
	ListOpenEnded(ctx context.Context, companyID string, filter TemporalFilter, limit int) ([]OpenEndedResponse, error)
	InsertBatch(ctx context.Context, respondents []Respondent) (int64, error)
}
