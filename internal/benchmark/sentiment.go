package benchmark

import (
	"fmt"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// UnknownLabel groups respondents without a region or department
const UnknownLabel = "Unknown"

// SentimentConfig derives the sentiment comparison from the capability one.
// Sentiment scores measure resistance, so lower is better.
func SentimentConfig(base Config) Config {
	base.HigherIsBetter = false
	return base
}

// SentimentCalculator computes SentimentBenchmarks. It holds no mutable
// state and is safe for concurrent use.
// ⭐ SSOT: company-vs-peer sentiment comparison
type SentimentCalculator struct {
	ranker *Calculator
}

// NewSentimentCalculator creates a calculator; cfg.HigherIsBetter is forced off
func NewSentimentCalculator(cfg Config) *SentimentCalculator {
	return &SentimentCalculator{ranker: NewCalculator(SentimentConfig(cfg))}
}

// Config returns the calculator's configuration
func (c *SentimentCalculator) Config() Config {
	return c.ranker.cfg
}

// Compute benchmarks company against all narrowed by filters.
//
// Cell averages only cover cells with at least one answer. The company
// score is the mean of its cell averages, and the percentile ranks it
// among per-company scores of the filtered peers. Peer fields are nil
// when no peer respondent survives the filters.
func (c *SentimentCalculator) Compute(all, company []contracts.Respondent, filters contracts.SentimentFilters) (*contracts.SentimentBenchmark, error) {
	if err := validateRespondents("company", company); err != nil {
		return nil, err
	}
	if err := validateRespondents("peer", all); err != nil {
		return nil, err
	}

	var own heatmap
	ownRespondents := make(map[string]struct{}, len(company))
	for _, r := range company {
		own.add(r)
		ownRespondents[r.RespondentID] = struct{}{}
	}

	var peers heatmap
	byCompany := make(map[string]*heatmap)
	var regions, departments map[string]*heatmap
	if c.ranker.cfg.Breakdowns {
		regions = make(map[string]*heatmap)
		departments = make(map[string]*heatmap)
	}

	peerRespondents := 0
	for _, r := range all {
		if !filters.Match(r) {
			continue
		}
		peerRespondents++
		peers.add(r)
		labelled(byCompany, r.CompanyID).add(r)

		if c.ranker.cfg.Breakdowns {
			labelled(regions, orUnknown(r.Region)).add(r)
			labelled(departments, orUnknown(r.Department)).add(r)
		}
	}

	result := &contracts.SentimentBenchmark{
		CellAverages:        peers.cellMeans(),
		CompanyCellAverages: own.cellMeans(),
		CompanyScore:        own.score(),
		PeerCompanies:       len(byCompany),
		PeerRespondents:     peerRespondents,
		CompanyRespondents:  len(ownRespondents),
		FiltersApplied:      filters,
	}

	if peerRespondents > 0 {
		result.OverallAverage = peers.score()
	}

	if result.OverallAverage != nil && result.CompanyScore != nil {
		companyScore, overall := *result.CompanyScore, *result.OverallAverage

		distribution := make([]float64, 0, len(byCompany))
		for _, h := range byCompany {
			if s := h.score(); s != nil {
				distribution = append(distribution, *s)
			}
		}

		vs := companyScore - overall
		passed := -vs >= -c.ranker.cfg.PassMargin
		result.CompanyVsBenchmark = &vs
		result.Passed = &passed
		if len(distribution) > 0 {
			percentile := c.ranker.percentile(companyScore, distribution)
			result.Percentile = &percentile
		}
	}

	if c.ranker.cfg.Breakdowns {
		result.RegionAverages = scoreByLabel(regions)
		result.DepartmentAverages = scoreByLabel(departments)
	}

	return result, nil
}

// heatmap accumulates answers per sentiment index (1..25, slot 0 unused)
type heatmap [contracts.SentimentCellCount + 1]accumulator

func (h *heatmap) add(r contracts.Respondent) {
	for idx, v := range r.Sentiment {
		h[idx].add(v)
	}
}

// cellMeans keys each answered cell's mean by "L<level>_C<category>"
func (h *heatmap) cellMeans() map[string]float64 {
	out := make(map[string]float64)
	for idx := 1; idx <= contracts.SentimentCellCount; idx++ {
		if h[idx].n == 0 {
			continue
		}
		level, category := contracts.SentimentCell(idx)
		out[contracts.CellKey(level, category)] = h[idx].mean()
	}
	return out
}

// score is the mean of the answered cells' means, nil when nothing was answered
func (h *heatmap) score() *float64 {
	var acc accumulator
	for idx := 1; idx <= contracts.SentimentCellCount; idx++ {
		if h[idx].n > 0 {
			acc.add(h[idx].mean())
		}
	}
	if acc.n == 0 {
		return nil
	}
	s := acc.mean()
	return &s
}

func labelled(groups map[string]*heatmap, label string) *heatmap {
	h, ok := groups[label]
	if !ok {
		h = &heatmap{}
		groups[label] = h
	}
	return h
}

func scoreByLabel(groups map[string]*heatmap) map[string]float64 {
	out := make(map[string]float64, len(groups))
	for label, h := range groups {
		if s := h.score(); s != nil {
			out[label] = *s
		}
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}

func validateRespondents(side string, respondents []contracts.Respondent) error {
	for i, r := range respondents {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s respondent %d: %w", side, i, err)
		}
	}
	return nil
}
