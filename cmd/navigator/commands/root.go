package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/companies"
	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/interventions"
	"github.com/wonny/ainavigator/backend/internal/periods"
	"github.com/wonny/ainavigator/backend/internal/respondents"
	"github.com/wonny/ainavigator/backend/internal/scores"
	"github.com/wonny/ainavigator/backend/pkg/config"
	"github.com/wonny/ainavigator/backend/pkg/database"
	"github.com/wonny/ainavigator/backend/pkg/logger"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "navigator",
	Short: "AI Navigator - capability and sentiment benchmark backend",
	Long: `AI Navigator Unified CLI

Serves capability and sentiment assessment data, benchmarks companies
against filtered peers and generates improvement recommendations.

Usage:
  go run ./cmd/navigator [command]

Examples:
  go run ./cmd/navigator migrate up
  go run ./cmd/navigator import --file scores.csv --company acme
  go run ./cmd/navigator import --kind sentiment --file sentiment.csv --company acme
  go run ./cmd/navigator benchmark --company acme --region US
  go run ./cmd/navigator api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default searches .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// app holds the shared infrastructure every command builds on
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client

	scores        *scores.Repository
	respondents   *respondents.Repository
	companies     contracts.CompanyRepository
	interventions *interventions.Repository
	periods       *periods.Repository
}

// newApp loads config and connects to the database and Redis
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Debug("Connected to database")

	rc, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &app{
		cfg:           cfg,
		log:           log,
		db:            db,
		redis:         rc,
		scores:        scores.NewRepository(db.Pool),
		respondents:   respondents.NewRepository(db.Pool),
		companies:     companies.NewCachedRepository(companies.NewRepository(db.Pool), redis.NewCache(rc, keyPrefix), log),
		interventions: interventions.NewRepository(db.Pool),
		periods:       periods.NewRepository(db.Pool),
	}, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}
