package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"asistente/internal/logger"
	"asistente/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Consolidated receivables/payables pack with findings and orders",
	Long: `Build the full report of a period from a single read of the data source:
aging and KPIs of both ledgers, the consolidated pack (CCC, balances, net
working capital proxy, checks), advisory findings with action orders,
hypotheses and a liquidity risk reading.`,
	Example: `  asistente report --month 2025-10
  asistente report --period "q3 2025" --dio 20 -o pack.json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("dio", "", "Days inventory outstanding, added to the cash conversion cycle")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")

	dio, err := dioFlag(cmd)
	if err != nil {
		return err
	}
	w, err := resolveWindow(cmd, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cmd, log)
	defer cancel()

	svc, closeFn, err := newReportService(ctx, log)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := svc.Build(ctx, w, report.Options{DIO: dio})
	if err != nil {
		return err
	}
	return writeOutput(cmd, rep, log)
}

func dioFlag(cmd *cobra.Command) (decimal.NullDecimal, error) {
	raw, _ := cmd.Flags().GetString("dio")
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid --dio %q: %w", raw, err)
	}
	return decimal.NewNullDecimal(d), nil
}
