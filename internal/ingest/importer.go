package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// Summary reports the outcome of an import
type Summary struct {
	CompanyIDs  []string `json:"company_ids"`
	Records     int      `json:"records"`
	Respondents int      `json:"respondents"`
	Written     int64    `json:"written"`
}

// Importer parses a file and loads it into the score or respondent store
type Importer struct {
	scores      contracts.ScoreRepository
	respondents contracts.RespondentRepository
	companies   contracts.CompanyRepository
	logger      *logger.Logger
}

// NewImporter creates a new Importer
func NewImporter(
	scores contracts.ScoreRepository,
	respondents contracts.RespondentRepository,
	companies contracts.CompanyRepository,
	log *logger.Logger,
) *Importer {
	return &Importer{scores: scores, respondents: respondents, companies: companies, logger: log}
}

// Import reads r and writes every record. Nothing is written when any row is invalid.
func (i *Importer) Import(ctx context.Context, r io.Reader, format Format, defaults Defaults) (*Summary, error) {
	records, err := Read(r, format, defaults)
	if err != nil {
		return nil, err
	}

	summary := summarize(records)
	if summary.Records == 0 {
		return summary, nil
	}

	if err := i.register(ctx, summary.CompanyIDs); err != nil {
		return nil, err
	}

	written, err := i.scores.InsertBatch(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("insert scores: %w", err)
	}
	summary.Written = written

	i.logger.WithFields(map[string]interface{}{
		"format":      string(format),
		"records":     summary.Records,
		"respondents": summary.Respondents,
		"written":     written,
		"companies":   summary.CompanyIDs,
	}).Info("Imported capability scores")

	return summary, nil
}

// ImportRespondents reads a sentiment survey export and writes every
// respondent. Nothing is written when any row is invalid.
func (i *Importer) ImportRespondents(ctx context.Context, r io.Reader, format Format, defaults Defaults) (*Summary, error) {
	if i.respondents == nil {
		return nil, fmt.Errorf("import respondents: no respondent store configured")
	}

	rows, err := ReadRespondents(r, format, defaults)
	if err != nil {
		return nil, err
	}

	summary := summarizeRespondents(rows)
	if summary.Records == 0 {
		return summary, nil
	}

	if err := i.register(ctx, summary.CompanyIDs); err != nil {
		return nil, err
	}

	written, err := i.respondents.InsertBatch(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("insert respondents: %w", err)
	}
	summary.Written = written

	i.logger.WithFields(map[string]interface{}{
		"format":      string(format),
		"respondents": summary.Respondents,
		"written":     written,
		"companies":   summary.CompanyIDs,
	}).Info("Imported sentiment respondents")

	return summary, nil
}

func (i *Importer) register(ctx context.Context, companyIDs []string) error {
	for _, id := range companyIDs {
		if err := i.companies.Upsert(ctx, &contracts.Company{ID: id}); err != nil {
			return fmt.Errorf("register company %s: %w", id, err)
		}
	}
	return nil
}

func summarizeRespondents(rows []contracts.Respondent) *Summary {
	s := &Summary{Records: len(rows), CompanyIDs: make([]string, 0)}
	companies := make(map[string]bool)
	respondents := make(map[[2]string]bool)
	for _, r := range rows {
		if !companies[r.CompanyID] {
			companies[r.CompanyID] = true
			s.CompanyIDs = append(s.CompanyIDs, r.CompanyID)
		}
		respondents[[2]string{r.CompanyID, r.RespondentID}] = true
	}
	s.Respondents = len(respondents)
	return s
}

func summarize(records []contracts.ScoreRecord) *Summary {
	s := &Summary{Records: len(records), CompanyIDs: make([]string, 0)}
	companies := make(map[string]bool)
	respondents := make(map[[2]string]bool)
	for _, r := range records {
		if !companies[r.CompanyID] {
			companies[r.CompanyID] = true
			s.CompanyIDs = append(s.CompanyIDs, r.CompanyID)
		}
		respondents[[2]string{r.CompanyID, r.RespondentID}] = true
	}
	s.Respondents = len(respondents)
	return s
}
