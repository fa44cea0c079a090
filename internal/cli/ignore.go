package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"dividend-screener/internal/cache"
	"dividend-screener/internal/models"
	"dividend-screener/internal/ticker"
)

// addIgnoreCommands adds the ignore-cache commands.
func addIgnoreCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage the ignored-ticker cache",
		Long: `Tickers rejected during screening are remembered for 30 days so
repeated runs skip them without refetching. The cache is append-only;
re-adding a ticker extends its window.`,
	}
	cmd.AddCommand(newIgnoreListCmd(app))
	cmd.AddCommand(newIgnoreAddCmd(app))
	rootCmd.AddCommand(cmd)
}

func newIgnoreListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ignored tickers",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snapshot := app.Ignores.Load()
			today := models.Today()

			type entry struct {
				Ticker      string `json:"ticker"`
				IgnoreUntil string `json:"ignore_until"`
				Active      bool   `json:"active"`
			}
			entries := make([]entry, 0, len(snapshot))
			for symbol, until := range snapshot {
				entries = append(entries, entry{
					Ticker:      symbol,
					IgnoreUntil: until.String(),
					Active:      snapshot.IsIgnored(symbol, today),
				})
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Ticker < entries[j].Ticker })

			if output.IsJSON() {
				return output.JSON(entries)
			}

			if len(entries) == 0 {
				output.Dim("Ignore cache is empty")
				return nil
			}
			output.Bold("%-8s %-12s %s", "TICKER", "UNTIL", "STATUS")
			for _, e := range entries {
				status := output.DimText("expired")
				if e.Active {
					status = "active"
				}
				output.Printf("%-8s %-12s %s\n", e.Ticker, e.IgnoreUntil, status)
			}
			return nil
		},
	}
}

func newIgnoreAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <ticker>",
		Short: "Add a ticker to the ignore cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol := ticker.Normalize(args[0])
			if err := app.Ignores.Add(symbol, models.Today()); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"ticker":       symbol,
					"ignore_until": models.Today().AddDays(cache.IgnoreWindowDays).String(),
				})
			}
			output.Success("Ignoring %s for %d days", symbol, cache.IgnoreWindowDays)
			return nil
		},
	}
}
