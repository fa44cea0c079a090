package cli

import (
	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExamplesCmd(app))
}

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflows")
			output.Println()

			examples := []struct {
				desc string
				cmd  string
			}{
				{"Screen the next two weeks", "screener screen"},
				{"Screen with a yield floor and scores", "screener screen --min-yield 1.5 --score"},
				{"Export a screening run to CSV", "screener screen --score --export results.csv"},
				{"Score one ticker", "screener score KO --amount 0.46"},
				{"Load a year of history into the database", "screener backfill"},
				{"Load history from a specific date", "screener backfill --since 2024-01-01"},
				{"Export scored dividends from the database", "screener export --min-yield 2 --out scored.csv"},
				{"Review the ignore cache", "screener ignore list"},
				{"Manually ignore a ticker", "screener ignore add SIXGF"},
			}
			for _, e := range examples {
				output.Printf("  %s\n", output.DimText("# "+e.desc))
				output.Printf("  %s\n\n", output.Cyan(e.cmd))
			}
			return nil
		},
	}
}
