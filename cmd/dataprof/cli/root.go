// Package cli implements the dataprof command line: one-shot dataset
// profiling and the HTTP API server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataprof/internal/config"
	"dataprof/internal/insight"
	"dataprof/internal/metrics"
	"dataprof/internal/metrics/datadog"
	"dataprof/internal/sector"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dataprof",
	Short: "dataprof cleans, profiles and classifies tabular datasets",
	Long: `dataprof ingests CSV, XLSX or HTML datasets, runs a cleaning pipeline
(column normalization, imputation, deduplication, outlier capping),
classifies and encodes columns, detects the dataset's business domain,
and produces a quality report.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main().
func Execute() {
	cobra.OnInitialize(initAll)
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initAll() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: init logger:", err)
		os.Exit(1)
	}

	cfg, err = config.Load(cfgFile)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
}

// newCollaborator builds the insight generator from config. Without an API
// key the generator answers locally.
func newCollaborator() *insight.Generator {
	if cfg.Insight.APIKey == "" {
		return insight.NewGenerator(nil, logger)
	}
	client := insight.NewClient(cfg.Insight.BaseURL, cfg.Insight.APIKey, cfg.Insight.Model, cfg.Insight.Timeout)
	return insight.NewGenerator(client, logger)
}

// newMetricsBackend builds the configured metrics backend, or a no-op.
func newMetricsBackend(ctx context.Context) (metrics.Backend, error) {
	switch cfg.Metrics.Backend {
	case "":
		return metrics.Nop{}, nil
	case "datadog":
		return datadog.NewBackend(ctx, datadog.Options{
			JobName:    cfg.Metrics.JobName,
			Tags:       datadog.ParseTagsCSV(cfg.Metrics.Tags),
			FlushEvery: cfg.Metrics.FlushEvery,
		})
	default:
		return nil, fmt.Errorf("unsupported metrics.backend=%q", cfg.Metrics.Backend)
	}
}

// loadSectors resolves the sector catalogue from config.
func loadSectors() ([]sector.Sector, error) {
	return sector.Load(cfg.Sector.KeywordsFile)
}
