package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/interventions"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// InterventionHandler serves the intervention catalogue and taboos
type InterventionHandler struct {
	service *interventions.Service
	logger  *logger.Logger
}

// NewInterventionHandler creates a new InterventionHandler
func NewInterventionHandler(service *interventions.Service, log *logger.Logger) *InterventionHandler {
	return &InterventionHandler{
		service: service,
		logger:  log,
	}
}

// fail writes err's status. Server errors are logged and masked.
func (h *InterventionHandler) fail(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error(msg)
		respondError(w, status, msg)
		return
	}
	respondError(w, status, err.Error())
}

// List returns every intervention
// GET /api/interventions
func (h *InterventionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to fetch interventions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    list,
		"count":   len(list),
	})
}

// ForDimension returns the ranked interventions for a capability dimension
// GET /api/interventions/capability?dimension=1..8
func (h *InterventionHandler) ForDimension(w http.ResponseWriter, r *http.Request) {
	dimension, err := queryInt(r, "dimension")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.service.ForDimension(r.Context(), dimension)
	if err != nil {
		h.fail(w, err, "Failed to fetch capability interventions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rec,
	})
}

// ForCell returns the ranked interventions for a heatmap cell
// GET /api/interventions/cell?level_id=1..5&category_id=1..5
func (h *InterventionHandler) ForCell(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt(r, "level_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := queryInt(r, "category_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.service.ForCell(r.Context(), level, category)
	if err != nil {
		h.fail(w, err, "Failed to fetch cell interventions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    rec,
	})
}

// ForSentiment returns the ranked interventions for a heatmap cell with the
// cell's description alongside
// GET /api/interventions/sentiment?level=1..5&category=1..5
func (h *InterventionHandler) ForSentiment(w http.ResponseWriter, r *http.Request) {
	level, errLevel := queryInt(r, "level")
	category, errCategory := queryInt(r, "category")
	if errLevel != nil || errCategory != nil ||
		contracts.SentimentIndex(level, category) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid level or category. Must be between 1-5.")
		return
	}

	rec, err := h.service.ForCell(r.Context(), level, category)
	if errors.Is(err, contracts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No interventions found for this cell")
		return
	}
	if err != nil {
		h.fail(w, err, "Failed to fetch interventions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cell": map[string]interface{}{
			"level_id":    rec.LevelID,
			"category_id": rec.CategoryID,
			"level_name":  rec.LevelName,
			"category":    rec.Category,
			"reason":      rec.Rationale,
		},
		"interventions": rec.Interventions,
		"count":         len(rec.Interventions),
	})
}

// Get returns one intervention with its next steps
// GET /api/interventions/{code}
func (h *InterventionHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	detail, err := h.service.Detail(r.Context(), code)
	if err != nil {
		h.fail(w, err, "Failed to fetch intervention")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    detail,
	})
}

// Taboos returns the taboos of a heatmap cell
// GET /api/taboos?level=1..5&category=1..5
func (h *InterventionHandler) Taboos(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt(r, "level")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := queryInt(r, "category")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	taboos, err := h.service.Taboos(r.Context(), level, category)
	if err != nil {
		h.fail(w, err, "Failed to fetch taboos")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    taboos,
		"count":   len(taboos),
	})
}
