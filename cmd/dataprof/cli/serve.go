package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataprof/internal/api"
	"dataprof/internal/storage"
	_ "dataprof/internal/storage/all"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the profiling HTTP API",
	Long: `Serve starts the HTTP API: dataset upload and profiling, run report
retrieval, and guided chat. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := newMetricsBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	var repo storage.Repository
	if cfg.Storage.Kind != "" {
		repo, err = storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	sectors, err := loadSectors()
	if err != nil {
		return err
	}

	h := api.NewHandler(logger, repo, newCollaborator(), backend, sectors)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(h.MetricsMiddleware)
	h.RegisterRoutes(e)

	addr := flagAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	logger.Info("http api listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http api stopped")
	return nil
}
