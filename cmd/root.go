package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"asistente/internal/config"
	"asistente/internal/logger"
)

var version = "1.0.0"

var (
	// cfg is loaded before any subcommand runs. cfgErr keeps the reason when it
	// could not be, so commands that need a data source can report it.
	cfg    *config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "asistente",
	Short: "Aging and working-capital KPIs for receivables and payables",
	Long: `asistente reads customer (CxC) and supplier (CxP) invoices from the ERP
database or a Google Sheets workbook and reports, for a period:

  - aging buckets (0-30, 31-60, 61-90, 90+ days overdue) and totals
  - DSO, DPO and the cash conversion cycle
  - ranked lists: top overdue, open items, due soon, counterparty balance
  - a consolidated pack with advisory findings and action orders

The data source and thresholds are configured through environment variables
(or a .env file): SOURCE, DATABASE_URL, GOOGLE_SHEET_URL, TIMEZONE, DSO_HIGH...`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		cfg, cfgErr = config.Load(configFile)

		logConfig := logger.DefaultConfig()
		if cfgErr == nil {
			logConfig = cfg.GetLoggerConfig()
		}
		if err := logger.Setup(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		log := logger.WithComponent("cmd")
		if cfgErr != nil {
			log.Debug().Err(cfgErr).Msg("Configuration not loaded, using defaults")
		}
		log.Debug().Str("command", cmd.Name()).Str("version", version).Msg("Running command")
		return nil
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (yaml, json, toml or .env); environment variables take precedence")
	flags.String("kind", "cxc", "Ledger: cxc (receivables) or cxp (payables)")
	flags.String("month", "", "Period as YYYY-MM")
	flags.String("start", "", "Explicit period start (YYYY-MM-DD or RFC3339)")
	flags.String("end", "", "Explicit period end (YYYY-MM-DD or RFC3339)")
	flags.String("period", "", `Period in words, e.g. "agosto 2025", "mes pasado", "q3 2025"`)
	flags.String("as-of", "", "Aging reference date (default: end of the period)")
	flags.StringP("output", "o", "", "Output file path (default: stdout)")
	flags.Int("timeout", 60, "Timeout in seconds for reading the data source")
}
