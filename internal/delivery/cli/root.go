// Package cli is the command-line surface of the memorial extractor.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/pkg/config"
	"github.com/user/memorial-extractor/pkg/logger"
	"github.com/user/memorial-extractor/pkg/utils"
)

// errAborted marks a run whose failure was already reported to the operator.
var errAborted = errors.New("run aborted")

var (
	v         = viper.New()
	cfg       *config.Config
	appLogger = zap.NewNop()
)

// flagKeys binds persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"url":        "MEMORIAL_URL",
	"output":     "OUTPUT_FILE",
	"error-log":  "ERROR_LOG",
	"sheet":      "SHEET_NAME",
	"loader":     "LOADER",
	"timeout":    "FETCH_TIMEOUT",
	"log-level":  "LOG_LEVEL",
	"log-format": "LOG_FORMAT",
	"port":       "SERVER_PORT",
}

var rootCmd = &cobra.Command{
	Use:   "memorial",
	Short: "Extract a memorial page into a spreadsheet",
	Long: `Fetches one memorial page, reads its embedded structured data and
visible sections, and writes a single-row workbook.

Running without a subcommand is the same as "memorial extract".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runExtract,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("url", config.DefaultMemorialURL, "memorial page URL")
	pf.StringP("output", "o", config.DefaultOutputFile, "workbook path")
	pf.String("error-log", config.DefaultErrorLog, "error log path")
	pf.String("sheet", config.DefaultSheetName, "worksheet name")
	pf.String("loader", config.LoaderHTTP, "page loader: http or chrome")
	pf.Int("timeout", 30, "fetch timeout in seconds")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	addExtractFlags(rootCmd.Flags())
}

// bindFlags exposes changed flags to viper under their configuration key,
// so flags override the environment and the .env file.
func bindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	loaded, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !outputChosen(cmd) {
		loaded.OutputFile = OutputFor(loaded.MemorialURL)
	}
	cfg = loaded

	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	appLogger = l
	return nil
}

// outputChosen reports whether the operator picked the workbook path.
func outputChosen(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		return true
	}
	if _, ok := os.LookupEnv("OUTPUT_FILE"); ok {
		return true
	}
	return v.InConfig("OUTPUT_FILE")
}

// OutputFor names the default workbook after the memorial's name segment,
// "<name>_memorial.xlsx".
func OutputFor(url string) string {
	slug := utils.MemorialSlug(url)
	if slug == "" {
		return config.DefaultOutputFile
	}
	parts := strings.Split(slug, "_")
	name := strings.ReplaceAll(parts[len(parts)-1], "-", "_")
	return name + "_memorial.xlsx"
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	_ = appLogger.Sync()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errAborted) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}
