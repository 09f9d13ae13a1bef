package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/adapter/errlog"
	"github.com/user/memorial-extractor/internal/adapter/xlsx"
	"github.com/user/memorial-extractor/internal/usecase"
	"github.com/user/memorial-extractor/pkg/metrics"
	"github.com/user/memorial-extractor/pkg/utils"
)

var (
	batchInput   string
	batchWorkers int
	batchOutDir  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract many memorials, one workbook each",
	Long: `Reads memorial URLs from a file (one per line, blank lines and lines
starting with # are ignored; "-" reads standard input) and extracts them
concurrently. Each memorial is written to <out-dir>/<id>_<name>_memorial.xlsx;
URLs without a memorial path are named after their hash.

Every issue is appended to the error log. The command exits non-zero when
any memorial could not be extracted.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "-", "file with one memorial URL per line")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "number of concurrent extractions")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", ".", "directory for the workbooks")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	urls, err := readURLs(cmd.InOrStdin(), batchInput)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.New("no memorial URLs given")
	}
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.NewRegistry())
	d := buildDeps(ctx, cfg, m, appLogger)
	defer d.Close()

	paths := batchOutputs(batchOutDir, urls)
	factory := func(url string) usecase.MemorialExtractor {
		sink := xlsx.NewSink(paths[url], cfg.SheetName, appLogger)
		return usecase.NewMemorialUseCase(d.loader, sink, d.archives(), m, appLogger)
	}

	results := usecase.NewBatchRunner(batchWorkers, factory, appLogger).Run(ctx, urls)
	finish(m)

	log := errlog.NewWriter(cfg.ErrorLog)
	failed := 0
	for _, r := range results {
		if r.Report != nil {
			if err := log.Append(r.Report.Issues...); err != nil {
				appLogger.Error("Failed to write error log", zap.String("path", log.Path()), zap.Error(err))
			}
		}
		if r.Err != nil {
			failed++
			cmd.PrintErrf("%s: %v\n", r.URL, r.Err)
			continue
		}
		path, err := filepath.Abs(paths[r.URL])
		if err != nil {
			path = paths[r.URL]
		}
		cmd.Printf("Saved to: %s\n", path)
	}

	cmd.Printf("%d of %d memorials extracted\n", len(results)-failed, len(results))
	if failed > 0 {
		cmd.PrintErrf("%d extraction(s) failed. Check %s.\n", failed, log.Path())
		return errAborted
	}
	return nil
}

// batchOutputs assigns every URL its own workbook path under dir. Names come
// from the full memorial slug; a name already taken gets a numeric suffix.
func batchOutputs(dir string, urls []string) map[string]string {
	paths := make(map[string]string, len(urls))
	taken := make(map[string]bool, len(urls))
	for _, u := range urls {
		base := "memorial_" + utils.HashURL(u)[:12]
		if slug := utils.MemorialSlug(u); slug != "" {
			base = strings.ReplaceAll(slug, "-", "_") + "_memorial"
		}
		name := base + ".xlsx"
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d.xlsx", base, n)
		}
		taken[name] = true
		paths[u] = filepath.Join(dir, name)
	}
	return paths
}

// readURLs reads one URL per line from path, or from stdin when path is "-".
// Repeated lines are dropped.
func readURLs(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	seen := map[string]bool{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return urls, nil
}
