package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/models"
	"dividend-screener/internal/pipeline"
	"dividend-screener/pkg/utils"
)

// addDataCommands adds the database commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBackfillCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
}

func newBackfillCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Load dividend history into the database",
		Long: `Backfill fetches every dividend since the given date and loads
tickers, daily prices, dividends, and investment scores into the
database. Tickers that fail the risk filter are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if app.Dividends == nil {
				return fmt.Errorf("dividends API key not configured: %w", apperrors.ErrConfigInvalid)
			}
			if app.Store == nil {
				return fmt.Errorf("database unavailable: %w", apperrors.ErrDatabaseError)
			}

			since := models.Today().AddDays(-365)
			if raw, _ := cmd.Flags().GetString("since"); raw != "" {
				parsed, err := models.ParseDate(raw)
				if err != nil {
					return apperrors.Wrapf(err, "parsing --since %q", raw)
				}
				since = parsed
			}

			app.login(ctx)

			if !output.IsJSON() {
				output.Info("Backfilling dividends since %s", since.String())
			}

			b := pipeline.New(pipeline.Options{
				Source:  app.Dividends,
				Market:  app.Market,
				Session: app.Session,
				Store:   app.Store,
				Filter:  app.Config.Screening.FilterConfig(),
				Logger:  app.Logger,
			})
			stats, err := b.Run(ctx, since)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}
			output.Success("Backfill complete")
			output.Printf("  Records fetched:  %d\n", stats.Fetched)
			output.Printf("  Tickers stored:   %d\n", stats.TickersStored)
			output.Printf("  Tickers skipped:  %d\n", stats.TickersSkipped)
			output.Printf("  Dividends stored: %d\n", stats.Dividends)
			output.Printf("  Scores computed:  %d\n", stats.Scored)
			return nil
		},
	}

	cmd.Flags().String("since", "", "earliest ex-date to load (YYYY-MM-DD, default one year back)")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export scored dividends from the database",
		Long: `Export reads upcoming dividends with their scores from the
database and writes them to a CSV file, or prints them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if app.Store == nil {
				return fmt.Errorf("database unavailable: %w", apperrors.ErrDatabaseError)
			}

			minYield, _ := cmd.Flags().GetFloat64("min-yield")
			days, _ := cmd.Flags().GetInt("days")
			start := models.Today()
			end := start.AddDays(days)

			events, err := app.Store.ScoredDividends(ctx, minYield, start, end)
			if err != nil {
				return err
			}

			if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
				if err := writeEventsCSV(outPath, events); err != nil {
					return err
				}
				output.Success("Exported %d events to %s", len(events), outPath)
				return nil
			}

			if output.IsJSON() {
				return output.JSON(events)
			}
			if len(events) == 0 {
				output.Warning("No scored dividends in window")
				return nil
			}
			output.Bold("%-8s %-12s %10s %8s %7s %-5s %s",
				"TICKER", "EX-DATE", "AMOUNT", "YIELD", "SCORE", "GRADE", "COMPANY")
			for _, ev := range events {
				output.Printf("%-8s %-12s %10s %8s %7.2f %-5s %s\n",
					ev.Ticker, ev.ExDividendDate.String(),
					utils.FormatUSD(ev.CashAmount),
					utils.FormatPercent(ev.DividendYield),
					ev.Score, output.GradeString(ev.Grade), ev.Company)
			}
			return nil
		},
	}

	cmd.Flags().Float64("min-yield", 0, "minimum dividend yield percent")
	cmd.Flags().Int("days", 14, "days ahead to include")
	cmd.Flags().String("out", "", "write to a CSV file instead of printing")
	return cmd
}
