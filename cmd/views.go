package cmd

import (
	"github.com/spf13/cobra"

	"asistente/internal/aging"
	"asistente/internal/logger"
	"asistente/internal/period"
	"asistente/internal/report"
	"asistente/pkg/models"
)

var topOverdueCmd = &cobra.Command{
	Use:   "top-overdue",
	Short: "Most overdue open invoices",
	Long: `List the open invoices of --kind with the most days overdue at the end of
the period, largest outstanding first among ties. The default size comes from
TOP_N_DEFAULT.`,
	Example: `  asistente top-overdue --kind cxc --month 2025-10 -n 5`,
	Args:    cobra.NoArgs,
	RunE:    runTopOverdue,
}

var balanceCmd = &cobra.Command{
	Use:   "balance [customer-or-supplier]",
	Short: "Open balance of one customer or supplier",
	Long: `Sum the open invoices of one counterparty. The argument matches the legal
name (case-insensitive) or the entity id exactly.`,
	Example: `  asistente balance "Distribuidora Central" --kind cxc
  asistente balance 3-101-123456 --kind cxp`,
	Args: cobra.ExactArgs(1),
	RunE: runBalance,
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "All open invoices with their status",
	Long: `List every open invoice of --kind with status open_on_time or overdue at
the end of the period. Invoices on time come first.`,
	Args: cobra.NoArgs,
	RunE: runOpen,
}

var dueSoonCmd = &cobra.Command{
	Use:   "due-soon",
	Short: "Open invoices falling due in the next days",
	Long: `List the open invoices of --kind falling due between the end of the period
and --days later, soonest first.`,
	Example: `  asistente due-soon --kind cxp --days 14`,
	Args:    cobra.NoArgs,
	RunE:    runDueSoon,
}

// ListOutput is the JSON output of the list commands
type ListOutput struct {
	Kind   models.Kind   `json:"kind"`
	Period period.Window `json:"period"`
	Items  []aging.Row   `json:"items"`
}

func init() {
	rootCmd.AddCommand(topOverdueCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(dueSoonCmd)

	topOverdueCmd.Flags().IntP("top", "n", 0, "Number of invoices (default: TOP_N_DEFAULT)")
	dueSoonCmd.Flags().Int("days", aging.DefaultDueSoonDays, "Look-ahead in days")
}

// viewFunc computes one list view from an opened report service
type viewFunc func(cmd *cobra.Command, svc *report.Service, kind models.Kind, w period.Window) (interface{}, error)

func runView(cmd *cobra.Command, component string, view viewFunc) error {
	log := logger.WithComponent(component)

	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	w, err := resolveWindow(cmd, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cmd, log)
	defer cancel()
	cmd.SetContext(ctx)

	svc, closeFn, err := newReportService(ctx, log)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := view(cmd, svc, kind, w)
	if err != nil {
		return err
	}
	return writeOutput(cmd, out, log)
}

func runTopOverdue(cmd *cobra.Command, args []string) error {
	return runView(cmd, "top-overdue", func(cmd *cobra.Command, svc *report.Service, kind models.Kind, w period.Window) (interface{}, error) {
		n, _ := cmd.Flags().GetInt("top")
		if n <= 0 {
			n = aging.DefaultTopN
			if cfg != nil {
				n = cfg.TopNDefault
			}
		}
		rows, err := svc.TopOverdue(cmd.Context(), kind, w, n)
		if err != nil {
			return nil, err
		}
		return ListOutput{Kind: kind, Period: w, Items: rows}, nil
	})
}

func runBalance(cmd *cobra.Command, args []string) error {
	return runView(cmd, "balance", func(cmd *cobra.Command, svc *report.Service, kind models.Kind, w period.Window) (interface{}, error) {
		return svc.CounterpartyBalance(cmd.Context(), kind, w, args[0])
	})
}

func runOpen(cmd *cobra.Command, args []string) error {
	return runView(cmd, "open", func(cmd *cobra.Command, svc *report.Service, kind models.Kind, w period.Window) (interface{}, error) {
		rows, err := svc.OpenItems(cmd.Context(), kind, w)
		if err != nil {
			return nil, err
		}
		return ListOutput{Kind: kind, Period: w, Items: rows}, nil
	})
}

func runDueSoon(cmd *cobra.Command, args []string) error {
	return runView(cmd, "due-soon", func(cmd *cobra.Command, svc *report.Service, kind models.Kind, w period.Window) (interface{}, error) {
		days, _ := cmd.Flags().GetInt("days")
		rows, err := svc.DueSoon(cmd.Context(), kind, w, days)
		if err != nil {
			return nil, err
		}
		return ListOutput{Kind: kind, Period: w, Items: rows}, nil
	})
}
