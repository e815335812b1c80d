package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataprof/internal/loader"
	"dataprof/internal/metrics"
	"dataprof/internal/profile"
	"dataprof/internal/sector"
	"dataprof/internal/storage"
	_ "dataprof/internal/storage/all"
)

var (
	flagOutput  string
	flagPersist bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Clean and profile a dataset file",
	Long: `Profile runs the full pipeline over one CSV, XLSX or HTML file and
prints the report as JSON. With --persist and a configured storage backend
the run is also saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the JSON report to a file instead of stdout")
	profileCmd.Flags().BoolVar(&flagPersist, "persist", false, "save the run to the configured storage backend")
	rootCmd.AddCommand(profileCmd)
}

// cliReport is the JSON document the profile command emits.
type cliReport struct {
	ID       uuid.UUID      `json:"id"`
	Dataset  string         `json:"dataset"`
	Sector   string         `json:"sector"`
	Summary  string         `json:"summary"`
	Columns  []string       `json:"columns"`
	Result   profile.Result `json:"result"`
	Insights []string       `json:"insights"`
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	start := time.Now()

	backend, err := newMetricsBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	t, err := loader.Load(path)
	if err != nil {
		return err
	}

	res, err := profile.CleanAndProfile(ctx, logger, t)
	if err != nil {
		backend.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"status": "error"})
		return err
	}
	backend.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"status": "ok"})
	backend.ObserveHistogram(metrics.RunDurationSeconds, time.Since(start).Seconds(), metrics.Labels{"status": "ok"})
	backend.IncCounter(metrics.RowsTotal, float64(res.RowsBefore), metrics.Labels{"kind": "before"})
	backend.IncCounter(metrics.RowsTotal, float64(res.RowsAfter), metrics.Labels{"kind": "after"})
	backend.IncCounter(metrics.RowsTotal, float64(res.DuplicatesRemoved), metrics.Labels{"kind": "duplicates"})

	sectors, err := loadSectors()
	if err != nil {
		return err
	}
	detected := sector.Detect(res.Cleaned.Names(), sectors)

	gen := newCollaborator()
	summary := gen.Summary(res.RowsAfter, res.Cleaned.NumCols(), res.Classification, res.Metrics, detected)
	insights, fromFallback := gen.Insights(ctx, summary, detected)
	if fromFallback {
		logger.Info("collaborator unavailable, insights are local defaults")
	}

	report := cliReport{
		ID:       uuid.New(),
		Dataset:  filepath.Base(path),
		Sector:   detected,
		Summary:  summary,
		Columns:  res.Cleaned.Names(),
		Result:   *res,
		Insights: insights,
	}

	if flagPersist {
		if err := persistRun(cmd, report, res); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if flagOutput != "" {
		return os.WriteFile(flagOutput, append(out, '\n'), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func persistRun(cmd *cobra.Command, report cliReport, res *profile.Result) error {
	if cfg.Storage.Kind == "" {
		return fmt.Errorf("--persist requires storage.kind to be configured")
	}
	ctx := cmd.Context()
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	logJSON, err := json.Marshal(res.Log)
	if err != nil {
		logJSON = nil
	}
	rep := storage.RunReport{
		ID:                report.ID,
		Dataset:           report.Dataset,
		CreatedAt:         time.Now().UTC(),
		Sector:            report.Sector,
		RowsBefore:        res.RowsBefore,
		RowsAfter:         res.RowsAfter,
		DuplicatesRemoved: res.DuplicatesRemoved,
		MissingPct:        res.Metrics.MissingPct,
		AvgCorrelation:    res.Metrics.AvgCorrelation,
		CleaningLog:       logJSON,
	}
	if err := repo.SaveRun(ctx, rep); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logger.Info("run persisted", zap.String("id", report.ID.String()), zap.String("backend", cfg.Storage.Kind))
	return nil
}
