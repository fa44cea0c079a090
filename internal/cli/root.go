// Package cli provides the command-line interface for the dividend screener.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dividend-screener/internal/broker"
	"dividend-screener/internal/cache"
	"dividend-screener/internal/config"
	"dividend-screener/internal/logging"
	"dividend-screener/internal/marketdata"
	"dividend-screener/internal/polygon"
	"dividend-screener/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-09-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Dividends *polygon.Client
	Market    marketdata.Source
	Session   broker.Session
	Results   *cache.ResultCache
	Ignores   *cache.IgnoreCache
	Store     store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Market = marketdata.NewYahooClient(marketdata.YahooConfig{}, logger)
	app.Results = cache.NewResultCache(cfg.Cache.ResultFile, logger)
	app.Ignores = cache.NewIgnoreCache(cfg.Cache.IgnoreFile, logger)

	// Initialize dividends client if an API key is available
	if cfg.Credentials.Polygon.APIKey != "" {
		app.Dividends = polygon.NewClient(polygon.Config{
			APIKey: cfg.Credentials.Polygon.APIKey,
		}, logger)
		logger.Debug().Msg("Dividends API client initialized")
	}

	// Initialize brokerage session if credentials are available
	if cfg.Credentials.Broker.Username != "" {
		app.Session = broker.NewRESTSession(broker.RESTConfig{
			Username: cfg.Credentials.Broker.Username,
			Password: cfg.Credentials.Broker.Password,
		}, logger)
		logger.Debug().Msg("Brokerage session initialized")
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, database commands unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "screener",
		Short: "Dividend Screener - ex-dividend capture screening CLI",
		Long: `Dividend Screener finds upcoming ex-dividend dates for US equities,
filters out untradable and risky tickers, and grades the survivors by
yield and price-recovery behavior.

Use 'screener help <command>' for more information about a command.
Use 'screener examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/dividend-screener)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addScreenCommands(rootCmd, app)
	addIgnoreCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addHelpCommands(rootCmd, app)

	return rootCmd
}

// login authenticates the brokerage session if one is configured.
// Authentication failures degrade to an unauthenticated session.
func (app *App) login(ctx context.Context) {
	session, ok := app.Session.(*broker.RESTSession)
	if !ok || session == nil || session.IsAuthenticated() {
		return
	}
	if err := session.Login(ctx); err != nil {
		app.Logger.Warn().Err(err).Msg("Brokerage login failed, tradability checks disabled")
	}
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Dividend Screener v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Screening Configuration")
	output.Printf("  Min Yield:          %.2f%%\n", cfg.Screening.MinYield)
	output.Printf("  Days Ahead:         %d\n", cfg.Screening.DaysAhead)
	output.Printf("  Exclude Foreign:    %t\n", cfg.Screening.ExcludeForeign)
	output.Printf("  Exclude ADR:        %t\n", cfg.Screening.ExcludeADR)
	output.Printf("  Exclude Distressed: %t\n", cfg.Screening.ExcludeDistressed)
	output.Printf("  Strict Filtering:   %t\n", cfg.Screening.StrictFiltering)
	output.Println()

	output.Bold("Cache Configuration")
	output.Printf("  Result File: %s\n", cfg.Cache.ResultFile)
	output.Printf("  Ignore File: %s\n", cfg.Cache.IgnoreFile)
	output.Println()

	output.Bold("Database Configuration")
	output.Printf("  Path: %s\n", cfg.Database.Path)
	output.Println()

	output.Bold("Credentials")
	output.Printf("  Polygon API Key: %s\n", maskSecret(cfg.Credentials.Polygon.APIKey))
	output.Printf("  Broker Username: %s\n", cfg.Credentials.Broker.Username)
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
