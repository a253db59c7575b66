package cmd

import (
	"github.com/spf13/cobra"

	"asistente/internal/logger"
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Resolve the reporting window for the given period flags",
	Long: `Resolve --start/--end, --month or --period into the canonical reporting
window, in that order of precedence. Without any of them the current month is
used. The end of the window is the aging reference date.`,
	Example: `  asistente period --month 2025-08
  asistente period --period "del 1 al 15 de septiembre"
  asistente period --start 2025-10-01 --end 2025-10-15`,
	Args: cobra.NoArgs,
	RunE: runPeriod,
}

func init() {
	rootCmd.AddCommand(periodCmd)
}

func runPeriod(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("period")

	w, err := resolveWindow(cmd, log)
	if err != nil {
		return err
	}
	return writeOutput(cmd, w, log)
}
