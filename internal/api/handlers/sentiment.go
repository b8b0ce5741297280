package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/respondents"
	"github.com/wonny/ainavigator/backend/internal/scores"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// maxOpenEndedLimit bounds the limit query parameter
const maxOpenEndedLimit = 1000

// SentimentHandler serves a company's sentiment survey responses
type SentimentHandler struct {
	respondents contracts.RespondentRepository
	logger      *logger.Logger
}

// NewSentimentHandler creates a new SentimentHandler
func NewSentimentHandler(respondentRepo contracts.RespondentRepository, log *logger.Logger) *SentimentHandler {
	return &SentimentHandler{respondents: respondentRepo, logger: log}
}

// GetRespondents returns the company's respondents with sentiment_1..25 columns
// GET /api/data/respondents?assessment_date=&survey_wave=&date_from=&date_to=
func (h *SentimentHandler) GetRespondents(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	filter, err := scores.ParseTemporalFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.respondents.ListByCompany(r.Context(), companyID, filter)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch respondents")
		respondError(w, http.StatusInternalServerError, "Failed to fetch respondent data")
		return
	}

	rows := make([]contracts.SentimentRow, 0, len(list))
	for _, rec := range list {
		rows = append(rows, contracts.SentimentRow{Respondent: rec})
	}

	metadata := map[string]interface{}{"companyId": companyID}
	for k, v := range filter.Describe() {
		metadata[k] = v
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"data":     rows,
		"count":    len(rows),
		"metadata": metadata,
	})
}

// GetOpenEnded returns answers to the achievements, challenges and goals questions
// GET /api/data/open-ended?survey_wave=&assessment_date=&limit=
func (h *SentimentHandler) GetOpenEnded(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	filter, err := scores.ParseTemporalFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := respondents.DefaultOpenEndedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxOpenEndedLimit {
			respondError(w, http.StatusBadRequest, "limit must be an integer between 1 and "+strconv.Itoa(maxOpenEndedLimit))
			return
		}
	}

	responses, err := h.respondents.ListOpenEnded(r.Context(), companyID, filter, limit)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch open-ended responses")
		respondError(w, http.StatusInternalServerError, "Failed to fetch open-ended responses")
		return
	}

	if len(responses) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    []contracts.OpenEndedResponse{},
			"metadata": map[string]interface{}{
				"total":     0,
				"companyId": companyID,
				"message":   "No open-ended responses found for this company",
			},
		})
		return
	}

	// flat list of every answer, the input of the open-ended summary
	all := make([]string, 0, len(responses)*3)
	var q39, q40, q41 int
	for _, resp := range responses {
		if resp.Achievements != nil {
			all = append(all, *resp.Achievements)
			q39++
		}
		if resp.Challenges != nil {
			all = append(all, *resp.Challenges)
			q40++
		}
		if resp.FutureGoals != nil {
			all = append(all, *resp.FutureGoals)
			q41++
		}
	}

	temporal := filter.Describe()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"data":         responses,
		"allResponses": all,
		"metadata": map[string]interface{}{
			"total":          len(responses),
			"totalResponses": len(all),
			"companyId":      companyID,
			"surveyWave":     temporal["surveyWave"],
			"assessmentDate": orAll(filter),
			"breakdown": map[string]int{
				"q39Count": q39,
				"q40Count": q40,
				"q41Count": q41,
			},
		},
	})
}

// orAll names the assessment date filter, "all" when none is set
func orAll(f contracts.TemporalFilter) string {
	if f.AssessmentDate == nil {
		return "all"
	}
	return f.AssessmentDate.Format(contracts.DateLayout)
}
