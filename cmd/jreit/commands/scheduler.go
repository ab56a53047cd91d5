package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/jreit-finder/internal/scheduler"
	"github.com/wonny/jreit-finder/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "スケジューラー管理",
	Long: `スケジューラーを起動、またはジョブを管理します。

Subcommands:
  start   - スケジューラー起動
  list    - 登録済みジョブ一覧
  run     - 指定ジョブを即時実行

Example:
  go run ./cmd/jreit scheduler start
  go run ./cmd/jreit scheduler list
  go run ./cmd/jreit scheduler run jreit_snapshot`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "スケジューラー起動",
		Long: `スケジューラーを起動し、登録済みの全ジョブをスケジュールします。

登録されるジョブ:
- jreit_cache_refresh: 毎時5分 (キャッシュ更新)
- jreit_snapshot: 毎日18時 (スナップショット保存, DATABASE_URL 設定時のみ)

Ctrl+C で終了します。`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "登録済みジョブ一覧",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "指定ジョブを即時実行",
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

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== J-REIT Finder Scheduler ===")

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		stat := stats[name]
		fmt.Printf("📊 %s: %d runs, %d failures\n", name, stat.TotalRuns, stat.FailureCount)
		if stat.LastError != "" {
			fmt.Printf("   last error: %s\n", stat.LastError)
		}
	}
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.GetJobStats()
	out := cmd.OutOrStdout()

	PrintHeader(out, "Registered jobs")
	for _, jobName := range sched.GetAllJobs() {
		next := "-"
		if t, err := sched.NextRun(jobName); err == nil {
			next = t.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "  - %-22s %-16s next: %s\n", jobName, stats[jobName].Schedule, next)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	result, err := sched.RunJobSync(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Job %s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func initScheduler() (*app, *scheduler.Scheduler, error) {
	a, err := newApp(context.Background())
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewCacheRefreshJob(a.provider, a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}

	if a.snapshots != nil {
		if err := sched.AddJob(jobs.NewSnapshotJob(a.provider, a.snapshots, a.log)); err != nil {
			a.Close()
			return nil, nil, err
		}
	} else {
		a.log.Warn("DATABASE_URL not set, jreit_snapshot job not registered")
	}

	return a, sched, nil
}
