package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"asistente/internal/config"
	"asistente/internal/period"
	"asistente/internal/report"
	"asistente/internal/sheets"
	"asistente/internal/source"
	"asistente/internal/store"
	"asistente/pkg/models"
)

// requireConfig returns the loaded configuration or the reason it failed.
func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("configuration: %w", cfgErr)
	}
	return cfg, nil
}

// newResolver builds a period resolver in the configured zone. It works
// without a valid configuration.
func newResolver() *period.Resolver {
	tz := period.DefaultTimezone
	if cfg != nil {
		tz = cfg.Timezone
	}
	return period.NewResolver(period.LoadLocation(tz))
}

func periodRequest(cmd *cobra.Command) period.Request {
	flags := cmd.Flags()
	start, _ := flags.GetString("start")
	end, _ := flags.GetString("end")
	month, _ := flags.GetString("month")
	natural, _ := flags.GetString("period")
	asOf, _ := flags.GetString("as-of")
	return period.Request{
		Start:   start,
		End:     end,
		Month:   month,
		Natural: natural,
		AsOf:    asOf,
	}
}

// resolveWindow turns the period flags into a window. A malformed period is an
// error, never silently replaced by the current month.
func resolveWindow(cmd *cobra.Command, log zerolog.Logger) (period.Window, error) {
	w, err := newResolver().Resolve(periodRequest(cmd))
	if err != nil {
		log.Error().Err(err).Msg("Invalid period")
		return period.Window{}, err
	}
	log.Debug().
		Str("period", w.Text).
		Time("start", w.Start).
		Time("end", w.End).
		Str("source", w.Source).
		Msg("Period resolved")
	return w, nil
}

func kindFlag(cmd *cobra.Command) (models.Kind, error) {
	raw, _ := cmd.Flags().GetString("kind")
	return models.ParseKind(raw)
}

// createContext creates a context with timeout and signal handling
func createContext(cmd *cobra.Command, log zerolog.Logger) (context.Context, context.CancelFunc) {
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openSource connects to the configured data source. The returned close
// function must be called once the source is no longer needed.
func openSource(ctx context.Context, c *config.Config, log zerolog.Logger) (source.Source, func(), error) {
	switch c.Source {
	case config.SourceSheets:
		svc, err := sheets.NewSheetsService(ctx, c.GoogleSheetURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Google Sheets service")
			return nil, nil, fmt.Errorf("failed to open sheets source: %w", err)
		}
		log.Debug().Str("spreadsheet_id", svc.SpreadsheetID()).Msg("Reading invoices from Google Sheets")
		return sheets.NewReader(svc, c.SheetReceivables, c.SheetPayables), func() {}, nil

	default:
		st, err := store.Open(ctx, c.StoreSettings())
		if err != nil {
			log.Error().Err(err).Str("driver", c.DBDriver).Msg("Failed to open database")
			return nil, nil, fmt.Errorf("failed to open database source: %w", err)
		}
		closeFn := func() {
			if err := st.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		}
		return st, closeFn, nil
	}
}

// newReportService wires the configured source into a report service.
func newReportService(ctx context.Context, log zerolog.Logger) (*report.Service, func(), error) {
	c, err := requireConfig()
	if err != nil {
		return nil, nil, err
	}

	src, closeFn, err := openSource(ctx, c, log)
	if err != nil {
		return nil, nil, err
	}

	rules, err := c.AdvisoryRules()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return report.NewService(src, rules), closeFn, nil
}

// writeOutput formats v as indented JSON to the --output file or stdout.
func writeOutput(cmd *cobra.Command, v interface{}, log zerolog.Logger) error {
	outputPath, _ := cmd.Flags().GetString("output")

	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
