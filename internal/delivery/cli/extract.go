package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/adapter/errlog"
	"github.com/user/memorial-extractor/internal/adapter/xlsx"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/internal/usecase"
	"github.com/user/memorial-extractor/pkg/metrics"
)

var (
	extractDryRun  bool
	extractFormat  string
	extractRefresh bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one memorial into a workbook",
	Long: `Fetches the memorial page, extracts its record and writes the workbook.
Issues are appended to the error log; an unrecoverable failure exits non-zero.

With --dry-run the projected record is printed instead of written.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	addExtractFlags(extractCmd.Flags())
	rootCmd.AddCommand(extractCmd)
}

func addExtractFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&extractDryRun, "dry-run", false, "print the record instead of writing the workbook")
	fs.StringVar(&extractFormat, "format", formatYAML, "dry-run output format: yaml, json or table")
	fs.BoolVar(&extractRefresh, "refresh", false, "ignore a cached copy of the page")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if extractDryRun && !validFormat(extractFormat) {
		return fmt.Errorf("unknown format %q", extractFormat)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.NewRegistry())
	d := buildDeps(ctx, cfg, m, appLogger)
	defer d.Close()

	if extractRefresh && d.cache != nil {
		if err := d.cache.Evict(ctx, cfg.MemorialURL); err != nil {
			appLogger.Warn("Failed to evict cached page", zap.Error(err))
		}
	}

	var sink repository.RecordSink
	if !extractDryRun {
		sink = xlsx.NewSink(cfg.OutputFile, cfg.SheetName, appLogger)
	}
	uc := usecase.NewMemorialUseCase(d.loader, sink, d.archives(), m, appLogger)

	report, runErr := uc.Run(ctx, cfg.MemorialURL)
	finish(m)

	log := errlog.NewWriter(cfg.ErrorLog)
	if err := log.Append(report.Issues...); err != nil {
		appLogger.Error("Failed to write error log", zap.String("path", log.Path()), zap.Error(err))
	}

	var failed *usecase.RunError
	if errors.As(runErr, &failed) {
		cmd.PrintErrln(abortMessage(failed, log.Path()))
		return errAborted
	}
	if runErr != nil {
		return runErr
	}

	if extractDryRun {
		return writeRecord(cmd.OutOrStdout(), extractFormat, report.Output)
	}
	path, err := filepath.Abs(cfg.OutputFile)
	if err != nil {
		path = cfg.OutputFile
	}
	cmd.Printf("Saved to: %s\n", path)
	return nil
}

// abortMessage is the one-line operator message for an aborted run,
// e.g. "Fetch page failed. Check errors.txt."
func abortMessage(err *usecase.RunError, logPath string) string {
	step := err.Step
	if step != "" {
		step = strings.ToUpper(step[:1]) + step[1:]
	}
	return fmt.Sprintf("%s failed. Check %s.", step, logPath)
}

// finish writes the run's metrics for the textfile collector when configured.
func finish(m *metrics.Metrics) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		appLogger.Warn("Failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
	}
}
