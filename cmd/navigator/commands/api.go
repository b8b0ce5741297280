package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/api"
	"github.com/wonny/ainavigator/backend/internal/api/handlers"
	"github.com/wonny/ainavigator/backend/internal/benchmark"
	"github.com/wonny/ainavigator/backend/internal/ingest"
	"github.com/wonny/ainavigator/backend/internal/insights"
	"github.com/wonny/ainavigator/backend/internal/interventions"
	"github.com/wonny/ainavigator/backend/internal/transform"
	"github.com/wonny/ainavigator/backend/pkg/httputil"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

// keyPrefix namespaces every Redis key this service writes
const keyPrefix = "navigator"

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/data/capability
  POST /api/data/capability/upload
  GET  /api/data/respondents
  GET  /api/data/open-ended
  GET  /api/data/assessment-periods
  POST /api/data/assessment-periods
  GET  /api/benchmarks/capability
  GET  /api/benchmarks/overview
  GET  /api/interventions
  GET  /api/interventions/capability
  GET  /api/interventions/cell
  GET  /api/interventions/sentiment
  GET  /api/interventions/{code}
  GET  /api/taboos
  POST /api/gpt/capability-insights
  POST /api/gpt/analyze
  POST /api/gpt/interventions
  POST /api/gpt/summary
  POST /api/gpt/chat

Example:
  go run ./cmd/navigator api
  go run ./cmd/navigator api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	withScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "run background jobs in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AI Navigator API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	transformCfg, err := transform.ConfigFrom(a.cfg.Transform)
	if err != nil {
		return fmt.Errorf("transform config: %w", err)
	}

	var completer insights.Completer
	oc, err := insights.NewOpenAICompleter(a.cfg.OpenAI, openAIHTTPClient(a))
	switch {
	case err == nil:
		completer = oc
	case errors.Is(err, insights.ErrDisabled):
		a.log.Warn("OPENAI_API_KEY not set, insight generation disabled")
	default:
		return fmt.Errorf("openai client: %w", err)
	}

	log := a.log
	validate := handlers.NewValidator()
	generator := insights.NewGenerator(completer, a.interventions, redis.NewCache(a.redis, keyPrefix), log)
	benchCfg := benchmark.ConfigFrom(a.cfg.Benchmark)
	calculator := benchmark.NewCalculator(benchCfg)

	router := api.NewRouter(api.Routes{
		Capability: handlers.NewCapabilityHandler(
			a.scores,
			transform.NewTransformer(transformCfg),
			ingest.NewImporter(a.scores, a.respondents, a.companies, log),
			a.cfg.Upload.MaxBytes,
			log,
		),
		Sentiment: handlers.NewSentimentHandler(a.respondents, log),
		Benchmark: handlers.NewBenchmarkHandler(
			a.scores,
			a.respondents,
			a.companies,
			calculator,
			benchmark.NewSentimentCalculator(benchCfg),
			log,
		),
		Periods:       handlers.NewPeriodHandler(a.periods, validate, log),
		Interventions: handlers.NewInterventionHandler(interventions.NewService(a.interventions, a.interventions), log),
		Insights:      handlers.NewInsightHandler(generator, a.scores, calculator, validate, log),
		Health:        a.db,
		GPTLimit: api.RateLimit{
			Limiter: redis.NewRateLimiter(a.redis, keyPrefix),
			Limit:   a.cfg.OpenAI.CompanyLimit,
			Window:  a.cfg.OpenAI.CompanyWindow,
		},
		MetricsEnabled: a.cfg.MetricsEnabled,
	}, log)

	server := api.New(a.cfg, log, router)

	if withScheduler {
		sched, err := buildScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// openAIHTTPClient logs LLM calls and applies the cross-replica limit
func openAIHTTPClient(a *app) *http.Client {
	var opts []httputil.Option
	if a.cfg.OpenAI.GlobalLimit > 0 {
		opts = append(opts, httputil.WithRateLimiter(
			redis.NewRateLimiter(a.redis, keyPrefix),
			redis.RateLimitConfig{Key: "openai", Limit: a.cfg.OpenAI.GlobalLimit, Window: time.Minute},
		))
	}
	return httputil.New(a.cfg.OpenAI.Timeout+5*time.Second, a.log, opts...)
}
