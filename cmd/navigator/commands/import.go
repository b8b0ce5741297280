package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/ingest"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load capability scores or sentiment respondents from CSV or XLSX",
	Long: `Reads a survey file and writes it to the database. Re-importing the
same file is idempotent.

--kind capability (default): long format, one row per respondent and construct
  Required columns: respondent_id, construct_id, score
  Optional columns: company_id, dimension_id, assessment_date, survey_wave,
                    country_synthetic, role_synthetic, industry_synthetic,
                    continent_synthetic

--kind sentiment: one row per respondent
  Required columns: respondent_id plus sentiment_1..sentiment_25 and/or
                    q39_achievements, q40_challenges, q41_future_goals
  Optional columns: company_id, region, department, employment_type, age,
                    user_language, industry, continent, assessment_date,
                    survey_wave

Example:
  go run ./cmd/navigator import --file scores.csv --company acme
  go run ./cmd/navigator import --file wave2.xlsx --company acme --wave wave2 --date 2026-03-01
  go run ./cmd/navigator import --kind sentiment --file sentiment.csv --company acme`,
	RunE: runImport,
}

var (
	importFile    string
	importCompany string
	importWave    string
	importDate    string
	importLock    bool
	importKind    string
)

// Import kinds
const (
	kindCapability = "capability"
	kindSentiment  = "sentiment"
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "CSV or XLSX file")
	importCmd.Flags().StringVar(&importCompany, "company", "", "company_id for rows without one")
	importCmd.Flags().StringVar(&importWave, "wave", "", "survey_wave for rows without one")
	importCmd.Flags().StringVar(&importDate, "date", "", "assessment_date (YYYY-MM-DD) for rows without one")
	importCmd.Flags().BoolVar(&importLock, "lock-company", false, "reject rows for any other company")
	importCmd.Flags().StringVar(&importKind, "kind", kindCapability, "file kind (capability|sentiment)")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	if importKind != kindCapability && importKind != kindSentiment {
		return fmt.Errorf("--kind must be %s or %s", kindCapability, kindSentiment)
	}
	format, err := ingest.DetectFormat(importFile)
	if err != nil {
		return err
	}

	defaults := ingest.Defaults{
		CompanyID:   importCompany,
		SurveyWave:  importWave,
		LockCompany: importLock,
	}
	if importLock && importCompany == "" {
		return fmt.Errorf("--lock-company requires --company")
	}
	if importDate != "" {
		date, err := time.Parse(contracts.DateLayout, importDate)
		if err != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
		defaults.AssessmentDate = date
	}

	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", importFile, err)
	}
	defer f.Close()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	importer := ingest.NewImporter(a.scores, a.respondents, a.companies, a.log)
	var summary *ingest.Summary
	if importKind == kindSentiment {
		summary, err = importer.ImportRespondents(context.Background(), f, format, defaults)
	} else {
		summary, err = importer.Import(context.Background(), f, format, defaults)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintDoubleSeparator()
	PrintKeyValue("File", importFile, 12)
	PrintKeyValue("Kind", importKind, 12)
	PrintKeyValue("Companies", strings.Join(summary.CompanyIDs, ", "), 12)
	PrintKeyValue("Records", strconv.Itoa(summary.Records), 12)
	PrintKeyValue("Respondents", strconv.Itoa(summary.Respondents), 12)
	PrintKeyValue("Written", strconv.FormatInt(summary.Written, 10), 12)
	PrintSeparator()
	PrintSuccess(fmt.Sprintf("Import completed in %.2fs", time.Since(start).Seconds()))
	return nil
}
