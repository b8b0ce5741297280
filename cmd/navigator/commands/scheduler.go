package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/ainavigator/backend/internal/scheduler"
	"github.com/wonny/ainavigator/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run or inspect background jobs",
	Long: `Starts the job scheduler or runs a job once.

Subcommands:
  start   - run the scheduler until Ctrl+C
  list    - list registered jobs
  run     - run one job now and print its result

Jobs:
  duplicate_score_audit  daily 03:00  report duplicate score keys
  db_health              every 5 min  ping the database

Example:
  go run ./cmd/navigator scheduler start
  go run ./cmd/navigator scheduler run duplicate_score_audit`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler registers every background job
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)
	for _, job := range []scheduler.Job{
		jobs.NewDuplicateAuditJob(a.scores, a.log),
		jobs.NewDBHealthJob(a.db, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AI Navigator Scheduler ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	sched.Start()

	PrintSuccess("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.Jobs())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printStats(sched.Stats())
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	PrintList(sched.Jobs())
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sched.RunNow(ctx, args[0])
	if err != nil {
		return err
	}

	PrintKeyValue("Job", result.JobName, 9)
	PrintKeyValue("Attempts", strconv.Itoa(result.Attempts), 9)
	PrintKeyValue("Duration", result.Duration.String(), 9)
	if !result.Success {
		PrintError(result.Error)
		return fmt.Errorf("job %s failed", result.JobName)
	}
	PrintSuccess("Job completed")
	return nil
}

func printStats(stats map[string]scheduler.JobStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	widths := []int{24, 6, 6, 6}
	PrintTableHeader([]string{"Job", "Runs", "OK", "Failed"}, widths)
	for _, name := range names {
		st := stats[name]
		PrintTableRow([]string{
			name,
			strconv.Itoa(st.TotalRuns),
			strconv.Itoa(st.SuccessCount),
			strconv.Itoa(st.FailureCount),
		}, widths)
	}
}
