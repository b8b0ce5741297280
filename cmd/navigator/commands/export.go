package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/transform"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a company's scores as wide rows (JSON)",
	Long: `Pivots a company's long-format scores to one row per respondent,
the same shape GET /api/data/capability returns.

Example:
  go run ./cmd/navigator export --company acme > acme.json
  go run ./cmd/navigator export --company acme --wave baseline --merge error`,
	RunE: runExport,
}

var (
	exportCompany string
	exportWave    string
	exportMerge   string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportCompany, "company", "", "company_id to export")
	exportCmd.Flags().StringVar(&exportWave, "wave", "", "restrict to one survey wave")
	exportCmd.Flags().StringVar(&exportMerge, "merge", "", "duplicate policy: last_wins or error (default from config)")
	_ = exportCmd.MarkFlagRequired("company")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if exportMerge != "" {
		a.cfg.Transform.MergePolicy = exportMerge
	}
	cfg, err := transform.ConfigFrom(a.cfg.Transform)
	if err != nil {
		return err
	}

	records, err := a.scores.ListByCompany(context.Background(), exportCompany, contracts.TemporalFilter{SurveyWave: exportWave})
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}

	rows, err := transform.NewTransformer(cfg).Transform(records)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
