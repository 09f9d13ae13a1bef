package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/delivery/http/handler"
	"github.com/user/memorial-extractor/internal/delivery/http/router"
	"github.com/user/memorial-extractor/internal/usecase"
	"github.com/user/memorial-extractor/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction API",
	Long: `Starts an HTTP server exposing POST /api/extract, GET /api/columns,
GET /api/records, GET /api/health and /metrics.

Records are returned to the caller and archived when POSTGRES_URL is set;
no workbook is written.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "8080", "listen port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	d := buildDeps(ctx, cfg, m, appLogger)
	defer d.Close()

	uc := usecase.NewMemorialUseCase(d.loader, nil, d.archives(), m, appLogger)

	opts := []handler.Option{}
	for name, check := range d.checks {
		opts = append(opts, handler.WithHealthCheck(name, check))
	}
	if d.archive != nil {
		opts = append(opts, handler.WithArchive(d.archive))
	}
	if d.cache != nil {
		opts = append(opts, handler.WithCache(d.cache))
	}
	h := handler.NewHandler(uc, appLogger, opts...)

	requestTimeout := cfg.Timeout() + 30*time.Second
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(h, m, appLogger, requestTimeout),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLogger.Info("Server exiting")
	return nil
}
