package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/ainavigator/backend/internal/benchmark"
	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/scores"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// BenchmarkHandler compares a company against filtered peers
type BenchmarkHandler struct {
	scores      contracts.ScoreRepository
	respondents contracts.RespondentRepository
	companies   contracts.CompanyRepository
	calculator  *benchmark.Calculator
	sentiment   *benchmark.SentimentCalculator
	logger      *logger.Logger
}

// NewBenchmarkHandler creates a new BenchmarkHandler
func NewBenchmarkHandler(
	scoreRepo contracts.ScoreRepository,
	respondentRepo contracts.RespondentRepository,
	companies contracts.CompanyRepository,
	calculator *benchmark.Calculator,
	sentiment *benchmark.SentimentCalculator,
	log *logger.Logger,
) *BenchmarkHandler {
	return &BenchmarkHandler{
		scores:      scoreRepo,
		respondents: respondentRepo,
		companies:   companies,
		calculator:  calculator,
		sentiment:   sentiment,
		logger:      log,
	}
}

// benchmarkRun is one computed benchmark plus the inputs' sizes
type benchmarkRun struct {
	result        *contracts.BenchmarkResult
	filters       contracts.BenchmarkFilters
	temporal      contracts.TemporalFilter
	totalScores   int
	companyScores int
	respondents   int
}

// sentimentRun is one computed sentiment benchmark plus the inputs' sizes
type sentimentRun struct {
	result             *contracts.SentimentBenchmark
	totalRespondents   int
	companyRespondents int
}

func parseBenchmarkFilters(r *http.Request) contracts.BenchmarkFilters {
	q := r.URL.Query()
	return contracts.BenchmarkFilters{
		Region:    q.Get("region"),
		Industry:  q.Get("industry"),
		Continent: q.Get("continent"),
	}
}

// run loads both score sets and computes the benchmark. It writes the
// error response itself and returns nil on failure.
func (h *BenchmarkHandler) run(w http.ResponseWriter, r *http.Request, companyID string) *benchmarkRun {
	filter, err := scores.ParseTemporalFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	filters := parseBenchmarkFilters(r)

	all, err := h.scores.ListAll(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch peer capability scores")
		respondError(w, http.StatusInternalServerError, "Failed to fetch capability data")
		return nil
	}
	own, err := h.scores.ListByCompany(r.Context(), companyID, filter)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch company capability scores")
		respondError(w, http.StatusInternalServerError, "Failed to fetch company capability data")
		return nil
	}

	// stored rows failing validation are a server fault, not a bad request
	result, err := h.calculator.Compute(all, own, filters)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to compute benchmark")
		respondError(w, http.StatusInternalServerError, "Failed to compute benchmark")
		return nil
	}

	return &benchmarkRun{
		result:        result,
		filters:       filters,
		temporal:      filter,
		totalScores:   len(all),
		companyScores: len(own),
		respondents:   uniqueRespondents(own),
	}
}

// GetCapabilityBenchmark returns construct and dimension comparisons
// GET /api/benchmarks/capability?region=&industry=&continent=
func (h *BenchmarkHandler) GetCapabilityBenchmark(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	run := h.run(w, r, companyID)
	if run == nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"benchmark": run.result,
		"filters":   run.filters,
		"companyId": companyID,
		"metadata": map[string]interface{}{
			"totalScores":       run.totalScores,
			"companyScores":     run.companyScores,
			"uniqueRespondents": run.respondents,
		},
	})
}

// runSentiment loads both respondent sets and computes the sentiment
// benchmark under the same temporal filter as the capability run. It
// writes the error response itself and returns nil on failure.
func (h *BenchmarkHandler) runSentiment(w http.ResponseWriter, r *http.Request, companyID string, temporal contracts.TemporalFilter) *sentimentRun {
	q := r.URL.Query()
	filters := contracts.SentimentFilters{
		Region:     q.Get("region"),
		Department: q.Get("department"),
		Industry:   q.Get("industry"),
	}

	all, err := h.respondents.ListAll(r.Context(), temporal)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch peer respondents")
		respondError(w, http.StatusInternalServerError, "Failed to fetch sentiment benchmark data")
		return nil
	}
	own, err := h.respondents.ListByCompany(r.Context(), companyID, temporal)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch company respondents")
		respondError(w, http.StatusInternalServerError, "Failed to fetch company sentiment data")
		return nil
	}

	result, err := h.sentiment.Compute(all, own, filters)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to compute sentiment benchmark")
		respondError(w, http.StatusInternalServerError, "Failed to compute benchmark")
		return nil
	}

	return &sentimentRun{
		result:             result,
		totalRespondents:   len(all),
		companyRespondents: len(own),
	}
}

// GetOverview returns company info alongside the sentiment and capability benchmarks
// GET /api/benchmarks/overview?region=&department=&industry=&continent=
func (h *BenchmarkHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	company, err := h.companies.GetByID(r.Context(), companyID)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch company")
		respondError(w, http.StatusInternalServerError, "Failed to fetch company")
		return
	}

	run := h.run(w, r, companyID)
	if run == nil {
		return
	}

	sentiment := h.runSentiment(w, r, companyID, run.temporal)
	if sentiment == nil {
		return
	}

	registered, err := h.scores.CountRespondents(r.Context(), companyID, run.temporal)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Warn("Failed to count respondents")
	}

	info := map[string]interface{}{"id": companyID, "name": nil, "displayName": nil}
	if company != nil {
		info["name"] = company.Name
		info["displayName"] = company.DisplayName
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"company":    info,
		"sentiment":  sentiment.result,
		"capability": run.result,
		"filters": map[string]string{
			"region":     run.filters.Region,
			"department": r.URL.Query().Get("department"),
			"industry":   run.filters.Industry,
			"continent":  run.filters.Continent,
		},
		"metadata": map[string]interface{}{
			"sentiment": map[string]interface{}{
				"totalRespondents":   sentiment.totalRespondents,
				"companyRespondents": sentiment.companyRespondents,
			},
			"capability": map[string]interface{}{
				"totalScores":       run.totalScores,
				"companyScores":     run.companyScores,
				"uniqueRespondents": run.respondents,
				"totalRespondents":  registered,
			},
		},
	})
}
