package cli

import (
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/user/memorial-extractor/internal/entity"
)

var columnsAll bool

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the workbook columns",
	Long: `Prints the workbook columns in order. With --all, keys that are
extracted but not exported are listed as well.`,
	Args: cobra.NoArgs,
	RunE: runColumns,
}

func init() {
	columnsCmd.Flags().BoolVar(&columnsAll, "all", false, "include extracted keys that are not exported")
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, _ []string) error {
	width := 0
	for _, c := range entity.OutputSchema.Columns {
		width = max(width, runewidth.StringWidth(c.Key))
	}
	for i, c := range entity.OutputSchema.Columns {
		if !c.Export && !columnsAll {
			continue
		}
		if !columnsAll {
			cmd.Println(c.Key)
			continue
		}
		state := "exported"
		if !c.Export {
			state = "not exported"
		}
		cmd.Printf("%2d  %s  %s\n", i+1, runewidth.FillRight(c.Key, width), state)
	}
	return nil
}
