package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"asistente/internal/logger"
	"asistente/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aging, KPI and report JSON API",
	Long: `Start the HTTP API on SERVER_HOST:SERVER_PORT (or --addr).

Endpoints (period via ?month=, ?start=&end= or ?period=; ?as_of= moves the
aging reference date):
  GET /api/v1/period
  GET /api/v1/report[?dio=]
  GET /api/v1/{cxc|cxp}/aging
  GET /api/v1/{cxc|cxp}/kpis
  GET /api/v1/{cxc|cxp}/top-overdue[?n=]
  GET /api/v1/{cxc|cxp}/balance?counterparty=
  GET /api/v1/{cxc|cxp}/open
  GET /api/v1/{cxc|cxp}/due-soon[?days=]

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: SERVER_HOST:SERVER_PORT)")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Grace period for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	c, err := requireConfig()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = c.ServerAddr()
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	ctx := cmd.Context()
	svc, closeFn, err := newReportService(ctx, log)
	if err != nil {
		return err
	}
	defer closeFn()

	api := server.NewWebAPI(server.Config{
		Addr:            addr,
		ShutdownTimeout: shutdownTimeout,
		TopNDefault:     c.TopNDefault,
		Dependencies: server.Dependencies{
			Reports:  svc,
			Resolver: newResolver(),
			Logger:   logger.WithComponent("api"),
		},
	})

	log.Info().
		Str("addr", addr).
		Str("source", c.Source).
		Str("timezone", c.Timezone).
		Msg("Starting API server")

	return api.Start(ctx)
}
