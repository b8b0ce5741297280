package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/ingest"
	"github.com/wonny/ainavigator/backend/internal/scores"
	"github.com/wonny/ainavigator/backend/internal/transform"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// uploadField is the multipart field holding the survey file
const uploadField = "file"

// CapabilityHandler serves a company's capability scores
type CapabilityHandler struct {
	scores      contracts.ScoreRepository
	transformer *transform.Transformer
	importer    *ingest.Importer
	maxUpload   int64
	logger      *logger.Logger
}

// NewCapabilityHandler creates a new CapabilityHandler
func NewCapabilityHandler(
	scoreRepo contracts.ScoreRepository,
	transformer *transform.Transformer,
	importer *ingest.Importer,
	maxUpload int64,
	log *logger.Logger,
) *CapabilityHandler {
	return &CapabilityHandler{
		scores:      scoreRepo,
		transformer: transformer,
		importer:    importer,
		maxUpload:   maxUpload,
		logger:      log,
	}
}

// GetCapability returns the company's scores pivoted to one row per respondent
// GET /api/data/capability?assessment_date=&survey_wave=&date_from=&date_to=
func (h *CapabilityHandler) GetCapability(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	filter, err := scores.ParseTemporalFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.scores.ListByCompany(r.Context(), companyID, filter)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to fetch capability scores")
		respondError(w, http.StatusInternalServerError, "Failed to fetch capability data")
		return
	}

	rows, err := h.transformer.Transform(records)
	if err != nil {
		h.logger.WithError(err).WithCompany(companyID).Error("Failed to transform capability scores")
		respondError(w, statusFor(err), err.Error())
		return
	}

	metadata := map[string]interface{}{
		"total":       len(rows),
		"companyId":   companyID,
		"totalScores": len(records),
	}
	for k, v := range filter.Describe() {
		metadata[k] = v
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"data":     rows,
		"metadata": metadata,
	})
}

// Upload imports a long-format CSV or XLSX file for the caller's company
// POST /api/data/capability/upload (multipart: file, survey_wave, assessment_date)
func (h *CapabilityHandler) Upload(w http.ResponseWriter, r *http.Request) {
	companyID := CompanyID(r.Context())

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	format, err := ingest.DetectFormat(header.Filename)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	defaults := ingest.Defaults{
		CompanyID:   companyID,
		SurveyWave:  r.FormValue(scores.ParamSurveyWave),
		LockCompany: true,
	}
	if raw := r.FormValue(scores.ParamAssessmentDate); raw != "" {
		date, err := time.Parse(contracts.DateLayout, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "assessment_date must be YYYY-MM-DD")
			return
		}
		defaults.AssessmentDate = date
	}

	summary, err := h.importer.Import(r.Context(), file, format, defaults)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithCompany(companyID).Error("Failed to import capability scores")
			respondError(w, status, "Failed to import capability data")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}
