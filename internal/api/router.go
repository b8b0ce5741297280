package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/ainavigator/backend/internal/api/handlers"
	"github.com/wonny/ainavigator/backend/pkg/database"
	"github.com/wonny/ainavigator/backend/pkg/logger"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

// HealthChecker reports backing store health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// RateLimit bounds per-company calls to the LLM endpoints
type RateLimit struct {
	Limiter *redis.RateLimiter
	Limit   int
	Window  time.Duration
}

// Routes bundles everything the router serves
type Routes struct {
	Capability    *handlers.CapabilityHandler
	Sentiment     *handlers.SentimentHandler
	Benchmark     *handlers.BenchmarkHandler
	Periods       *handlers.PeriodHandler
	Interventions *handlers.InterventionHandler
	Insights      *handlers.InsightHandler

	Health         HealthChecker
	GPTLimit       RateLimit
	MetricsEnabled bool
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are declared only in this function
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(routes.Health)).Methods("GET")
	if routes.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Reference data
	api.HandleFunc("/interventions", routes.Interventions.List).Methods("GET")
	api.HandleFunc("/interventions/capability", routes.Interventions.ForDimension).Methods("GET")
	api.HandleFunc("/interventions/cell", routes.Interventions.ForCell).Methods("GET")
	api.HandleFunc("/interventions/sentiment", routes.Interventions.ForSentiment).Methods("GET")
	api.HandleFunc("/interventions/{code}", routes.Interventions.Get).Methods("GET")
	api.HandleFunc("/taboos", routes.Interventions.Taboos).Methods("GET")

	// Company scoped endpoints
	data := api.PathPrefix("/data").Subrouter()
	data.Use(handlers.RequireCompany)
	data.HandleFunc("/capability", routes.Capability.GetCapability).Methods("GET")
	data.HandleFunc("/capability/upload", routes.Capability.Upload).Methods("POST")
	data.HandleFunc("/respondents", routes.Sentiment.GetRespondents).Methods("GET")
	data.HandleFunc("/open-ended", routes.Sentiment.GetOpenEnded).Methods("GET")
	data.HandleFunc("/assessment-periods", routes.Periods.List).Methods("GET")
	data.HandleFunc("/assessment-periods", routes.Periods.Create).Methods("POST")

	bench := api.PathPrefix("/benchmarks").Subrouter()
	bench.Use(handlers.RequireCompany)
	bench.HandleFunc("/capability", routes.Benchmark.GetCapabilityBenchmark).Methods("GET")
	bench.HandleFunc("/overview", routes.Benchmark.GetOverview).Methods("GET")

	gpt := api.PathPrefix("/gpt").Subrouter()
	gpt.Use(handlers.RequireCompany)
	gpt.Use(companyRateLimitMiddleware(routes.GPTLimit.Limiter, routes.GPTLimit.Limit, routes.GPTLimit.Window, log))
	gpt.HandleFunc("/capability-insights", routes.Insights.CapabilityInsights).Methods("POST")
	gpt.HandleFunc("/analyze", routes.Insights.Analyze).Methods("POST")
	gpt.HandleFunc("/interventions", routes.Insights.Interventions).Methods("POST")
	gpt.HandleFunc("/summary", routes.Insights.Summary).Methods("POST")
	gpt.HandleFunc("/chat", routes.Insights.Chat).Methods("POST")

	// Apply middleware
	r.Use(requestIDMiddleware)
	if routes.MetricsEnabled {
		r.Use(metricsMiddleware)
	}
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "ai-navigator-api",
		}
		status := http.StatusOK

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			db, err := checker.HealthCheck(ctx)
			body["database"] = db
			if err != nil {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
