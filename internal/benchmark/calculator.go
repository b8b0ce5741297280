// Package benchmark compares a company's capability scores to a filtered
// peer population.
package benchmark

import (
	"fmt"
	"math"

	"github.com/wonny/ainavigator/backend/internal/capability"
	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/config"
)

// Config controls how company and peer figures are compared
type Config struct {
	// HigherIsBetter flips percentile and gap direction when false
	HigherIsBetter bool
	// PassMargin is how far below the peer average still passes (>= 0)
	PassMargin float64
	// Breakdowns adds per-region and per-industry peer averages
	Breakdowns bool
	// PercentilePrecision is the number of decimals kept on percentiles
	PercentilePrecision int
}

// DefaultConfig returns the comparison used by the dashboard
func DefaultConfig() Config {
	return Config{
		HigherIsBetter:      true,
		PassMargin:          0,
		Breakdowns:          true,
		PercentilePrecision: 0,
	}
}

// ConfigFrom adapts the application configuration
func ConfigFrom(cfg config.BenchmarkConfig) Config {
	return Config{
		HigherIsBetter:      cfg.HigherIsBetter,
		PassMargin:          cfg.PassMargin,
		Breakdowns:          cfg.Breakdowns,
		PercentilePrecision: cfg.PercentilePrecision,
	}
}

// Calculator computes BenchmarkResults. It holds no mutable state and is
// safe for concurrent use.
// ⭐ SSOT: company-vs-peer capability comparison
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with a fixed configuration
func NewCalculator(cfg Config) *Calculator {
	if cfg.PassMargin < 0 {
		cfg.PassMargin = 0
	}
	if cfg.PercentilePrecision < 0 {
		cfg.PercentilePrecision = 0
	}
	return &Calculator{cfg: cfg}
}

// Config returns the calculator's configuration
func (c *Calculator) Config() Config {
	return c.cfg
}

// Compute benchmarks companyScores against allScores narrowed by filters.
//
// Constructs absent from companyScores are omitted. When no peer record
// survives the filters for a construct, its peer fields are nil.
// A record failing validation aborts the call with ErrInvalidRecord.
func (c *Calculator) Compute(allScores, companyScores []contracts.ScoreRecord, filters contracts.BenchmarkFilters) (*contracts.BenchmarkResult, error) {
	if err := validate("company", companyScores); err != nil {
		return nil, err
	}
	if err := validate("peer", allScores); err != nil {
		return nil, err
	}

	companyConstructs := make(map[int]*population)
	companyDimensions := make(map[int]*population)
	for _, r := range companyScores {
		key := respondentKey{company: r.CompanyID, respondent: r.RespondentID}
		group(companyConstructs, r.ConstructID).add(key, r.Score)
		group(companyDimensions, r.Dimension()).add(key, r.Score)
	}

	peerConstructs := make(map[int]*population)
	peerDimensions := make(map[int]*population)
	var regions, industries map[string]map[int]*accumulator
	if c.cfg.Breakdowns {
		regions = make(map[string]map[int]*accumulator)
		industries = make(map[string]map[int]*accumulator)
	}

	peerRecords := 0
	for _, r := range allScores {
		if !filters.Match(r) {
			continue
		}
		peerRecords++
		key := respondentKey{company: r.CompanyID, respondent: r.RespondentID}
		group(peerConstructs, r.ConstructID).add(key, r.Score)
		group(peerDimensions, r.Dimension()).add(key, r.Score)

		if c.cfg.Breakdowns {
			addBreakdown(regions, r.CountrySynthetic, r.Dimension(), r.Score)
			addBreakdown(industries, r.IndustrySynthetic, r.Dimension(), r.Score)
		}
	}

	result := &contracts.BenchmarkResult{
		Constructs:     make(map[int]contracts.ConstructBenchmark, len(companyConstructs)),
		Dimensions:     make(map[int]contracts.DimensionBenchmark, len(companyDimensions)),
		PeerSampleSize: peerRecords,
		FiltersApplied: filters,
	}

	for id, company := range companyConstructs {
		cmp := c.compare(company, peerConstructs[id])
		result.Constructs[id] = contracts.ConstructBenchmark{
			ConstructID:       id,
			DimensionID:       contracts.DimensionOf(id),
			CompanyAverage:    cmp.companyAverage,
			PeerAverage:       cmp.peerAverage,
			Percentile:        cmp.percentile,
			Gap:               cmp.gap,
			Passed:            cmp.passed,
			CompanySampleSize: cmp.companySample,
			PeerSampleSize:    cmp.peerSample,
		}
	}

	for id, company := range companyDimensions {
		cmp := c.compare(company, peerDimensions[id])
		result.Dimensions[id] = contracts.DimensionBenchmark{
			DimensionID:       id,
			Name:              capability.DimensionName(id),
			CompanyAverage:    cmp.companyAverage,
			PeerAverage:       cmp.peerAverage,
			Percentile:        cmp.percentile,
			Gap:               cmp.gap,
			Passed:            cmp.passed,
			CompanySampleSize: cmp.companySample,
			PeerSampleSize:    cmp.peerSample,
		}
	}

	result.OverallPeerAverage = overallAverage(peerDimensions)

	if c.cfg.Breakdowns {
		result.RegionAverages = breakdownMeans(regions)
		result.IndustryAverages = breakdownMeans(industries)
	}

	return result, nil
}

type comparison struct {
	companyAverage float64
	companySample  int
	peerAverage    *float64
	percentile     *float64
	gap            *float64
	passed         *bool
	peerSample     int
}

func (c *Calculator) compare(company, peers *population) comparison {
	cmp := comparison{
		companyAverage: company.records.mean(),
		companySample:  len(company.respondents),
	}
	if peers == nil || peers.records.n == 0 {
		return cmp
	}

	peerAverage := peers.records.mean()
	percentile := c.percentile(cmp.companyAverage, peers.distribution())

	gap := cmp.companyAverage - peerAverage
	if !c.cfg.HigherIsBetter {
		gap = -gap
	}
	passed := gap >= -c.cfg.PassMargin

	cmp.peerAverage = &peerAverage
	cmp.percentile = &percentile
	cmp.gap = &gap
	cmp.passed = &passed
	cmp.peerSample = len(peers.respondents)
	return cmp
}

// percentile is the share of peer values at or below value (at or above
// when lower is better), 0-100. values must be non-empty.
func (c *Calculator) percentile(value float64, values []float64) float64 {
	rank := 0
	for _, v := range values {
		if c.cfg.HigherIsBetter && v <= value {
			rank++
		} else if !c.cfg.HigherIsBetter && v >= value {
			rank++
		}
	}
	return round(float64(rank)/float64(len(values))*100, c.cfg.PercentilePrecision)
}

func round(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

func validate(side string, records []contracts.ScoreRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s record %d: %w", side, i, err)
		}
	}
	return nil
}

// overallAverage is the mean of the per-dimension peer averages
func overallAverage(dimensions map[int]*population) *float64 {
	var acc accumulator
	for id := 1; id <= contracts.DimensionCount; id++ {
		if p, ok := dimensions[id]; ok && p.records.n > 0 {
			acc.add(p.records.mean())
		}
	}
	if acc.n == 0 {
		return nil
	}
	avg := acc.mean()
	return &avg
}

func addBreakdown(groups map[string]map[int]*accumulator, label string, dimension int, score float64) {
	if label == "" {
		return
	}
	dims, ok := groups[label]
	if !ok {
		dims = make(map[int]*accumulator)
		groups[label] = dims
	}
	acc, ok := dims[dimension]
	if !ok {
		acc = &accumulator{}
		dims[dimension] = acc
	}
	acc.add(score)
}

func breakdownMeans(groups map[string]map[int]*accumulator) map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(groups))
	for label, dims := range groups {
		means := make(map[int]float64, len(dims))
		for id, acc := range dims {
			means[id] = acc.mean()
		}
		out[label] = means
	}
	return out
}
