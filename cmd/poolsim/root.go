package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/poolsim/pool-simulator-go/shell/config"
	"github.com/poolsim/pool-simulator-go/simulator"
	"github.com/poolsim/pool-simulator-go/simulator/oteladapters"
	"github.com/poolsim/pool-simulator-go/simulator/postgresengine"
)

const (
	modeRaw       = "raw"
	modePooled    = "pooled"
	modeSQLPooled = "sqlpooled"
	modeAll       = "all"
)

var (
	cfgFile string
	mode    string
)

var rootCmd = &cobra.Command{
	Use:   "poolsim",
	Short: "Compare direct vs pooled connection acquisition under concurrent load",
	Long: `poolsim fires a fixed batch of simulated clients at a Postgres backend,
all released at the same instant, and measures the latency and success
profile of the selected connection-acquisition strategy.`,
	SilenceUsage: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "config.properties", "path to the properties config file")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", modeAll, "strategy to run: raw|pooled|sqlpooled|all")
}

func run() error {
	modes, err := selectedModes(mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := oteladapters.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	runLog, err := simulator.NewRunLog(cfg.LogFile, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := runLog.Close(); closeErr != nil {
			logger.Warn("failed to close run log", "error", closeErr.Error())
		}
	}()

	var summaries []simulator.Summary

	for _, m := range modes {
		summary, runErr := runStrategy(ctx, m, cfg, runLog, logger)
		if runErr != nil {
			// A preflight failure aborts this strategy's run only; the
			// remaining strategies still get their turn.
			fmt.Fprintf(os.Stderr, "run aborted for %s: %v\n", m, runErr)
			continue
		}

		printSummary(summary)
		summaries = append(summaries, summary)
	}

	if cfg.ReportFile != "" && len(summaries) > 0 {
		if exportErr := exportReport(cfg.ReportFile, summaries); exportErr != nil {
			logger.Warn("failed to export report", "error", exportErr.Error())
		}
	}

	return nil
}

func selectedModes(mode string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case modeRaw:
		return []string{modeRaw}, nil
	case modePooled:
		return []string{modePooled}, nil
	case modeSQLPooled:
		return []string{modeSQLPooled}, nil
	case modeAll:
		return []string{modeRaw, modePooled, modeSQLPooled}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q, want raw|pooled|sqlpooled|all", mode)
	}
}

func runStrategy(
	ctx context.Context,
	mode string,
	cfg config.RunConfig,
	runLog *simulator.RunLog,
	logger simulator.Logger,
) (simulator.Summary, error) {
	strategy, err := buildStrategy(ctx, mode, cfg)
	if err != nil {
		return simulator.Summary{}, err
	}
	defer func() {
		if closeErr := strategy.Close(ctx); closeErr != nil {
			logger.Warn("failed to close strategy", "strategy", strategy.Name(), "error", closeErr.Error())
		}
	}()

	orchestrator, err := simulator.NewOrchestrator(
		strategy,
		runLog,
		cfg.Samples,
		cfg.MaxRetries,
		cfg.Query,
		simulator.WithLogger(logger),
		simulator.WithMetricsCollector(oteladapters.NewMetricsCollector(otel.Meter("poolsim"))),
	)
	if err != nil {
		return simulator.Summary{}, err
	}

	return orchestrator.Run(ctx)
}

func buildStrategy(ctx context.Context, mode string, cfg config.RunConfig) (simulator.ConnectionStrategy, error) {
	switch mode {
	case modeRaw:
		return postgresengine.NewDirectStrategy(cfg.DSN())

	case modePooled:
		pool, err := config.NewPGXPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return postgresengine.NewPooledStrategy(pool)

	case modeSQLPooled:
		db, err := config.NewSQLXDB(cfg)
		if err != nil {
			return nil, err
		}
		return postgresengine.NewSQLPooledStrategy(db)

	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func printSummary(s simulator.Summary) {
	fmt.Printf("\n===== %s =====\n", strings.ToUpper(s.Strategy))
	fmt.Printf("Total time   : %d ms\n", s.ElapsedMs)
	fmt.Printf("Samples      : %d\n", s.Samples)
	fmt.Printf("Success      : %d (%.1f%%)\n", s.OkCount, s.SuccessPct)
	fmt.Printf("Failures     : %d\n", s.FailCount)
	fmt.Printf("Avg retries  : %.2f\n", s.AvgRetries)
	fmt.Printf("Latency (ms) : p50=%d p95=%d p99=%d max=%d\n", s.P50Ms, s.P95Ms, s.P99Ms, s.MaxMs)
	if s.TimedOut {
		fmt.Printf("NOTE: completion timeout expired, counts cover reported workers only\n")
	}
}

func exportReport(path string, summaries []simulator.Summary) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
