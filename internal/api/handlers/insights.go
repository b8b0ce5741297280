package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/ainavigator/backend/internal/benchmark"
	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/insights"
	"github.com/wonny/ainavigator/backend/internal/scores"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// InsightHandler serves LLM generated recommendations, summaries and chat
type InsightHandler struct {
	generator  *insights.Generator
	scores     contracts.ScoreRepository
	calculator *benchmark.Calculator
	validate   *validator.Validate
	logger     *logger.Logger
}

// NewInsightHandler creates a new InsightHandler. scoreRepo and calculator
// derive weak dimensions when a request leaves them out.
func NewInsightHandler(
	generator *insights.Generator,
	scoreRepo contracts.ScoreRepository,
	calculator *benchmark.Calculator,
	validate *validator.Validate,
	log *logger.Logger,
) *InsightHandler {
	return &InsightHandler{
		generator:  generator,
		scores:     scoreRepo,
		calculator: calculator,
		validate:   validate,
		logger:     log,
	}
}

// CapabilityInsights generates recommendations for weak dimensions.
// Without weak_dimensions in the body they come from the company's stored
// benchmark, narrowed by the body's filters and the query's temporal filter.
// POST /api/gpt/capability-insights
func (h *InsightHandler) CapabilityInsights(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	if !h.enabled(w) {
		return
	}

	var req insights.InsightRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.WeakDimensions) == 0 {
		weak, ok := h.weakDimensions(w, r, companyID, req.Filters)
		if !ok {
			return
		}
		if len(weak) == 0 {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data": insights.InsightResponse{
					Insights:  []insights.Insight{},
					ModelUsed: h.generator.Model(),
				},
				"message": "No weak dimensions against the benchmark",
			})
			return
		}
		req.WeakDimensions = weak
	}

	resp, err := h.generator.CapabilityInsights(r.Context(), req)
	if err != nil {
		h.fail(w, companyID, err, "Failed to generate capability insights", "Failed to generate insights")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    resp,
	})
}

// weakDimensions computes the company's benchmark and returns its failing
// dimensions. It writes the error response itself and reports false on failure.
func (h *InsightHandler) weakDimensions(w http.ResponseWriter, r *http.Request, companyID string, filters map[string]string) ([]insights.WeakDimension, bool) {
	if h.scores == nil || h.calculator == nil {
		respondError(w, http.StatusBadRequest, "invalid input: weak_dimensions required")
		return nil, false
	}

	temporal, err := scores.ParseTemporalFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	peers := parseBenchmarkFilters(r)
	if v := filters["region"]; v != "" {
		peers.Region = v
	}
	if v := filters["industry"]; v != "" {
		peers.Industry = v
	}
	if v := filters["continent"]; v != "" {
		peers.Continent = v
	}

	all, err := h.scores.ListAll(r.Context(), temporal)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch peer capability scores")
		respondError(w, http.StatusInternalServerError, "Failed to fetch capability data")
		return nil, false
	}
	own, err := h.scores.ListByCompany(r.Context(), companyID, temporal)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch company capability scores")
		respondError(w, http.StatusInternalServerError, "Failed to fetch company capability data")
		return nil, false
	}

	result, err := h.calculator.Compute(all, own, peers)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to compute benchmark")
		respondError(w, http.StatusInternalServerError, "Failed to compute benchmark")
		return nil, false
	}

	return insights.WeakDimensionsFrom(result), true
}

// Analyze groups the worst heatmap cells into problem categories
// POST /api/gpt/analyze
func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	if !h.enabled(w) {
		return
	}

	var req insights.AnalyzeRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gen, err := h.generator.ProblemCategories(r.Context(), req)
	if err != nil {
		h.fail(w, companyID, err, "Failed to analyze problem categories", "Failed to analyze data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"problem_categories": gen.Data,
			"generated_at":       gen.GeneratedAt,
			"model_used":         gen.ModelUsed,
			"cached":             gen.Cached,
		},
	})
}

// Interventions designs interventions for one problem category
// POST /api/gpt/interventions
func (h *InsightHandler) Interventions(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	if !h.enabled(w) {
		return
	}

	var req insights.InterventionRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gen, err := h.generator.DesignInterventions(r.Context(), req)
	if err != nil {
		h.fail(w, companyID, err, "Failed to design interventions", "Failed to generate interventions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"interventions": gen.Data,
			"category_name": req.ProblemCategory.CategoryName,
			"generated_at":  gen.GeneratedAt,
			"model_used":    gen.ModelUsed,
			"cached":        gen.Cached,
		},
	})
}

// Summary writes an executive or open-ended summary depending on type
// POST /api/gpt/summary
func (h *InsightHandler) Summary(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	if !h.enabled(w) {
		return
	}

	var req insights.SummaryRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		data        interface{}
		generatedAt interface{}
		model       string
		err         error
	)
	switch req.Type {
	case insights.SummaryExecutive:
		var gen *insights.Generated[insights.ExecutiveSummary]
		if gen, err = h.generator.ExecutiveSummary(r.Context(), req); err == nil {
			data, generatedAt, model = gen.Data, gen.GeneratedAt, gen.ModelUsed
		}
	case insights.SummaryOpenEnded:
		var gen *insights.Generated[insights.OpenEndedSummary]
		if gen, err = h.generator.OpenEndedSummary(r.Context(), req); err == nil {
			data, generatedAt, model = gen.Data, gen.GeneratedAt, gen.ModelUsed
		}
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid type: must be %q or %q", insights.SummaryExecutive, insights.SummaryOpenEnded))
		return
	}
	if err != nil {
		h.fail(w, companyID, err, "Failed to generate summary", "Failed to generate summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"type":         req.Type,
		"data":         data,
		"generated_at": generatedAt,
		"model_used":   model,
	})
}

// Chat answers one assistant message. With stream set the answer is sent
// as a server-sent event followed by a [DONE] event.
// POST /api/gpt/chat
func (h *InsightHandler) Chat(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	if !h.enabled(w) {
		return
	}

	var req insights.ChatRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid input: message required",
			"details": err.Error(),
		})
		return
	}

	answer, err := h.generator.Chat(r.Context(), req)
	if err != nil {
		h.fail(w, companyID, err, "Failed to answer chat message", "Failed to process chat message")
		return
	}

	if req.Stream {
		writeEventStream(w, answer.Response)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"response":   answer.Response,
		"metadata":   answer.Metadata,
		"model_used": answer.ModelUsed,
		"timestamp":  answer.Timestamp,
	})
}

func writeEventStream(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	chunk, _ := json.Marshal(map[string]string{"chunk": text})
	fmt.Fprintf(w, "data: %s\n\n", chunk)
	fmt.Fprint(w, "data: [DONE]\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *InsightHandler) enabled(w http.ResponseWriter) bool {
	if !h.generator.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "Insight generation is not configured")
		return false
	}
	return true
}

// fail logs a generator error and maps it to a response. Internal errors
// get a generic message.
func (h *InsightHandler) fail(w http.ResponseWriter, companyID string, err error, logMsg, publicMsg string) {
	status := statusFor(err)
	h.logger.WithError(err).WithCompany(companyID).Error(logMsg)
	if status == http.StatusInternalServerError {
		respondError(w, status, publicMsg)
		return
	}
	respondError(w, status, err.Error())
}
