package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/benchmark"
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// benchmarkCmd represents the benchmark command
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Print a company's dimension benchmark against filtered peers",
	Long: `Computes the capability benchmark the API serves and prints one row per dimension.

Example:
  go run ./cmd/navigator benchmark --company acme
  go run ./cmd/navigator benchmark --company acme --industry Retail --wave wave2`,
	RunE: runBenchmark,
}

var (
	benchCompany   string
	benchRegion    string
	benchIndustry  string
	benchContinent string
	benchWave      string
)

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVar(&benchCompany, "company", "", "company_id to benchmark")
	benchmarkCmd.Flags().StringVar(&benchRegion, "region", "", "peer region filter")
	benchmarkCmd.Flags().StringVar(&benchIndustry, "industry", "", "peer industry filter")
	benchmarkCmd.Flags().StringVar(&benchContinent, "continent", "", "peer continent filter")
	benchmarkCmd.Flags().StringVar(&benchWave, "wave", "", "restrict to one survey wave")
	_ = benchmarkCmd.MarkFlagRequired("company")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	filter := contracts.TemporalFilter{SurveyWave: benchWave}

	all, err := a.scores.ListAll(ctx, filter)
	if err != nil {
		return fmt.Errorf("load peer scores: %w", err)
	}
	own, err := a.scores.ListByCompany(ctx, benchCompany, filter)
	if err != nil {
		return fmt.Errorf("load company scores: %w", err)
	}
	if len(own) == 0 {
		PrintWarning(fmt.Sprintf("No scores for company %s", benchCompany))
		return nil
	}

	calc := benchmark.NewCalculator(benchmark.ConfigFrom(a.cfg.Benchmark))
	result, err := calc.Compute(all, own, contracts.BenchmarkFilters{
		Region:    benchRegion,
		Industry:  benchIndustry,
		Continent: benchContinent,
	})
	if err != nil {
		return fmt.Errorf("compute benchmark: %w", err)
	}

	printBenchmark(benchCompany, result)
	return nil
}

func printBenchmark(companyID string, result *contracts.BenchmarkResult) {
	PrintDoubleSeparator()
	fmt.Printf("  Benchmark: %s (peers: %d scores)\n", companyID, result.PeerSampleSize)
	PrintSeparator()

	widths := []int{3, 34, 8, 8, 7, 6, 6}
	PrintTableHeader([]string{"ID", "Dimension", "Company", "Peers", "Gap", "Pct", "Pass"}, widths)
	for id := 1; id <= contracts.DimensionCount; id++ {
		d, ok := result.Dimensions[id]
		if !ok {
			continue
		}
		PrintTableRow([]string{
			strconv.Itoa(id),
			d.Name,
			fmt.Sprintf("%.2f", d.CompanyAverage),
			formatOptional(d.PeerAverage, "%.2f"),
			formatOptional(d.Gap, "%+.2f"),
			formatOptional(d.Percentile, "%.0f"),
			formatPassed(d.Passed),
		}, widths)
	}

	PrintSeparator()
	PrintKeyValue("Overall peer average", formatOptional(result.OverallPeerAverage, "%.2f"), 20)

	weak := result.WeakDimensions()
	if len(weak) > 0 {
		names := make([]string, 0, len(weak))
		for _, d := range weak {
			names = append(names, d.Name)
		}
		fmt.Println("\n  Weak dimensions (worst first):")
		PrintNumberedList(names)
	}
}

func formatOptional(v *float64, layout string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(layout, *v)
}

func formatPassed(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "yes"
	default:
		return "no"
	}
}
