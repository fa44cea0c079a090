package cli

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/marketdata"
	"dividend-screener/internal/models"
	"dividend-screener/internal/screener"
	"dividend-screener/pkg/utils"
)

// addScreenCommands adds the screening commands.
func addScreenCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newScreenCmd(app))
	rootCmd.AddCommand(newScoreCmd(app))
}

func newScreenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen upcoming ex-dividend dates",
		Long: `Screen fetches upcoming ex-dividend events, drops untradable and
risky tickers, and prints the survivors. Results are cached; a fresh
cache short-circuits the network fetch entirely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if app.Dividends == nil {
				return fmt.Errorf("dividends API key not configured: %w", apperrors.ErrConfigInvalid)
			}

			fcfg := app.Config.Screening.FilterConfig()
			if cmd.Flags().Changed("min-yield") {
				fcfg.MinYield, _ = cmd.Flags().GetFloat64("min-yield")
			}
			if cmd.Flags().Changed("days") {
				fcfg.DaysAhead, _ = cmd.Flags().GetInt("days")
			}
			if cmd.Flags().Changed("strict") {
				fcfg.StrictFiltering, _ = cmd.Flags().GetBool("strict")
			}

			app.login(ctx)

			scr := screener.New(screener.Options{
				Source:  app.Dividends,
				Market:  app.Market,
				Session: app.Session,
				Results: app.Results,
				Ignores: app.Ignores,
				Logger:  app.Logger,
			})
			events := screener.Apply(scr.Run(ctx, fcfg), fcfg)

			withScores, _ := cmd.Flags().GetBool("score")
			if withScores {
				events = scr.EnrichScores(ctx, events)
			}

			if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
				if err := writeEventsCSV(exportPath, events); err != nil {
					return err
				}
				output.Success("Exported %d events to %s", len(events), exportPath)
			}

			if output.IsJSON() {
				return output.JSON(events)
			}
			printEvents(output, events, withScores)
			return nil
		},
	}

	cmd.Flags().Float64("min-yield", 0, "minimum dividend yield percent")
	cmd.Flags().Int("days", 0, "days ahead to screen (1-30)")
	cmd.Flags().Bool("strict", true, "enable strict filtering")
	cmd.Flags().Bool("score", false, "attach investability scores")
	cmd.Flags().String("export", "", "write results to a CSV file")
	return cmd
}

func printEvents(output *Output, events []models.DividendEvent, withScores bool) {
	if len(events) == 0 {
		output.Warning("No qualifying dividend events found")
		return
	}

	if utils.IsMarketOpen() {
		output.Dim("Market is open")
	} else {
		output.Dim("Market is closed")
	}
	output.Println()

	if withScores {
		output.Bold("%-8s %-12s %10s %12s %8s %7s %-5s %s",
			"TICKER", "EX-DATE", "AMOUNT", "PRICE", "YIELD", "SCORE", "GRADE", "COMPANY")
		for _, ev := range events {
			output.Printf("%-8s %-12s %10s %12s %8s %7.2f %-5s %s\n",
				ev.Ticker, ev.ExDividendDate.String(),
				utils.FormatUSD(ev.CashAmount), utils.FormatUSD(ev.Price),
				utils.FormatPercent(ev.DividendYield),
				ev.Score, output.GradeString(ev.Grade), ev.Company)
		}
	} else {
		output.Bold("%-8s %-12s %10s %12s %8s %s",
			"TICKER", "EX-DATE", "AMOUNT", "PRICE", "YIELD", "COMPANY")
		for _, ev := range events {
			output.Printf("%-8s %-12s %10s %12s %8s %s\n",
				ev.Ticker, ev.ExDividendDate.String(),
				utils.FormatUSD(ev.CashAmount), utils.FormatUSD(ev.Price),
				utils.FormatPercent(ev.DividendYield), ev.Company)
		}
	}
	output.Println()
	output.Dim("%d event(s)", len(events))
}

// writeEventsCSV writes events to a CSV file with the same column
// layout as the result cache.
func writeEventsCSV(path string, events []models.DividendEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(err, "creating export file")
	}
	defer f.Close()
	return apperrors.Wrap(gocsv.MarshalFile(&events, f), "writing export file")
}

func newScoreCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <ticker>",
		Short: "Score a single ticker",
		Long: `Score computes the investability score and grade for one ticker
from its live quote and recent price history. The dividend amount is
taken from --amount.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			symbol := args[0]
			amount, _ := cmd.Flags().GetFloat64("amount")

			info, err := app.Market.Quote(ctx, symbol)
			if err != nil {
				return apperrors.Wrapf(err, "fetching quote for %s", symbol)
			}
			if info.Price <= 0 {
				return apperrors.Wrapf(apperrors.ErrDataNotFound, "no price for %s", symbol)
			}

			bars, err := app.Market.History(ctx, symbol, 30)
			if err != nil {
				return apperrors.Wrapf(err, "fetching price history for %s", symbol)
			}
			latest, ok := marketdata.LatestComplete(marketdata.WithMovingAverages(bars))
			if !ok {
				return apperrors.Wrapf(apperrors.ErrDataNotFound, "not enough price history for %s", symbol)
			}

			yield := amount / info.Price * 100
			score, grade := screener.Score(models.ScoreInputs{
				YieldPct:       yield,
				CurrentPrice:   info.Price,
				MovingAvg20:    latest.MA20,
				DividendAmount: amount,
			})

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"ticker": info.Symbol,
					"price":  info.Price,
					"yield":  yield,
					"score":  score,
					"grade":  grade,
				})
			}

			output.Bold("%s  %s", info.Symbol, info.Name)
			output.Printf("  Price:  %s\n", utils.FormatUSD(info.Price))
			output.Printf("  Yield:  %s\n", utils.FormatPercent(yield))
			output.Printf("  MA20:   %s\n", utils.FormatUSD(latest.MA20))
			output.Printf("  Score:  %.2f\n", score)
			output.Printf("  Grade:  %s\n", output.GradeString(grade))
			return nil
		},
	}

	cmd.Flags().Float64("amount", 0, "dividend amount per share")
	cmd.MarkFlagRequired("amount")
	return cmd
}
