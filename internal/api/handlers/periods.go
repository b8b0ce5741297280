package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// PeriodHandler manages assessment periods
type PeriodHandler struct {
	periods  contracts.PeriodRepository
	validate *validator.Validate
	logger   *logger.Logger
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periods contracts.PeriodRepository, validate *validator.Validate, log *logger.Logger) *PeriodHandler {
	return &PeriodHandler{
		periods:  periods,
		validate: validate,
		logger:   log,
	}
}

// createPeriodRequest is the body of a new assessment period
type createPeriodRequest struct {
	SurveyWave           string   `json:"survey_wave" validate:"required,max=64"`
	AssessmentDate       string   `json:"assessment_date" validate:"required,datetime=2006-01-02"`
	Name                 string   `json:"name" validate:"required,max=200"`
	Description          string   `json:"description,omitempty"`
	InterventionsApplied []string `json:"interventions_applied,omitempty" validate:"omitempty,dive,required"`
}

// List returns the company's periods, newest first
// GET /api/data/assessment-periods
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	periods, err := h.periods.ListByCompany(r.Context(), companyID)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch assessment periods")
		respondError(w, http.StatusInternalServerError, "Failed to fetch assessment periods")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    periods,
		"count":   len(periods),
	})
}

// Create registers a new assessment period
// POST /api/data/assessment-periods
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	var req createPeriodRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, _ := time.Parse(contracts.DateLayout, req.AssessmentDate)

	period := &contracts.AssessmentPeriod{
		CompanyID:            companyID,
		SurveyWave:           req.SurveyWave,
		AssessmentDate:       date,
		Name:                 req.Name,
		Description:          req.Description,
		InterventionsApplied: req.InterventionsApplied,
	}
	if err := h.periods.Create(r.Context(), period); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithCompany(companyID).Error("Failed to create assessment period")
			respondError(w, status, "Failed to create assessment period")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    period,
	})
}
