package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/catalog"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the intervention catalogue from YAML",
	Long: `Validates a catalogue file and replaces capability mappings, heatmap
cell mappings, next steps and taboos with its contents. Interventions
are upserted by code.

Example:
  go run ./cmd/navigator seed --file configs/catalog.example.yaml
  go run ./cmd/navigator seed --file catalog.yaml --dry-run`,
	RunE: runSeed,
}

var (
	seedFile   string
	seedDryRun bool
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedFile, "file", "", "catalogue YAML file")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "validate and report without writing")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	c, err := catalog.Load(seedFile)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	hash, err := catalog.Hash(c)
	if err != nil {
		return fmt.Errorf("hash catalog: %w", err)
	}

	PrintDoubleSeparator()
	PrintKeyValue("File", seedFile, 20)
	PrintKeyValue("Version", c.Version, 20)
	PrintKeyValue("Hash", hash[:12], 20)
	summary := c.Summary()
	for _, section := range []string{"interventions", "capability_mappings", "cell_mappings", "next_steps", "taboos"} {
		PrintKeyValue(section, strconv.Itoa(summary[section]), 20)
	}

	if warnings := catalog.Check(c); len(warnings) > 0 {
		items := make([]string, 0, len(warnings))
		for _, w := range warnings {
			items = append(items, fmt.Sprintf("[%s] %s", w.Code, w.Message))
		}
		PrintWarning(fmt.Sprintf("%d coverage warnings", len(warnings)))
		PrintList(items)
	}
	PrintSeparator()

	if seedDryRun {
		PrintSuccess("Catalogue is valid (dry run, nothing written)")
		return nil
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	if err := a.interventions.Seed(context.Background(), c); err != nil {
		PrintError(err.Error())
		return err
	}

	a.log.WithFields(map[string]interface{}{
		"version": c.Version,
		"hash":    hash,
	}).Info("Seeded intervention catalogue")

	PrintSuccess(fmt.Sprintf("Catalogue seeded in %.2fs", time.Since(start).Seconds()))
	return nil
}
