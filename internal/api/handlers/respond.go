package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/ingest"
	"github.com/wonny/ainavigator/backend/internal/insights"
	"github.com/wonny/ainavigator/backend/internal/interventions"
	"github.com/wonny/ainavigator/backend/internal/periods"
	"github.com/wonny/ainavigator/backend/internal/transform"
)

// CompanyHeader carries the caller's company identity
const CompanyHeader = "X-Company-ID"

type ctxKey int

const companyKey ctxKey = iota

// RequireCompany rejects requests without a company header (401) and
// stores the id in the request context
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(CompanyHeader))
		if id == "" {
			respondError(w, http.StatusUnauthorized, "Company ID required in x-company-id header")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCompanyID(r.Context(), id)))
	})
}

// WithCompanyID returns a context carrying a company id
func WithCompanyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, companyKey, id)
}

// CompanyID returns the company id stored by RequireCompany
func CompanyID(ctx context.Context) string {
	id, _ := ctx.Value(companyKey).(string)
	return id
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrInvalidRecord),
		errors.Is(err, transform.ErrDuplicateScore),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, interventions.ErrOutOfRange),
		errors.Is(err, insights.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, periods.ErrDuplicateWave):
		return http.StatusConflict
	case errors.Is(err, insights.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, insights.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, insights.ErrBadCompletion), errors.Is(err, insights.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON body and validates its struct tags
func decodeBody(r *http.Request, validate *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationMessage(err)
	}
	return nil
}

// validationMessage flattens validator errors into one readable line
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
}

// NewValidator returns a validator that reports json field names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// queryInt parses a required integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// uniqueRespondents counts distinct respondent ids in a score set
func uniqueRespondents(records []contracts.ScoreRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.RespondentID] = struct{}{}
	}
	return len(seen)
}
