package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistente/internal/aging"
	"asistente/internal/consolidation"
	"asistente/internal/period"
	"asistente/internal/report"
)

const ledgerSchema = `
CREATE TABLE entidad (id_entidad INTEGER PRIMARY KEY, nombre_legal TEXT);
CREATE TABLE factura_cxc (
	numero_factura TEXT, fecha_emision DATE, fecha_limite DATE, fecha_pago DATE,
	monto NUMERIC, monto_pagado NUMERIC, id_entidad_cliente INTEGER
);
CREATE TABLE factura_cxp (
	numero_factura TEXT, fecha_emision DATE, fecha_limite DATE, fecha_pago DATE,
	monto NUMERIC, monto_pagado NUMERIC, id_entidad_proveedor INTEGER
);
INSERT INTO entidad VALUES (1, 'Cliente Uno'), (2, 'Cliente Dos'), (3, 'Proveedor SA');
INSERT INTO factura_cxc VALUES
	('FC-1', '2025-10-02', '2025-10-01', NULL, 1000, 0, 1),
	('FC-2', '2025-10-10', '2025-11-09', NULL, 2000, 500, 2),
	('FC-3', '2025-06-01', '2025-07-01', NULL, 1500, 0, 1);
INSERT INTO factura_cxp VALUES
	('FP-1', '2025-10-05', '2025-11-04', NULL, 3000, 1000, 3),
	('FP-2', '2025-10-20', '2025-10-28', NULL, 1000, 0, 3);
`

// useLedgerDB points the configuration at a fresh sqlite file with two ledgers.
func useLedgerDB(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "erp.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	db.MustExec(ledgerSchema)
	require.NoError(t, db.Close())

	t.Setenv("SOURCE", "db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)
	t.Setenv("LOG_LEVEL", "error")
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	_, err := rootCmd.ExecuteC()
	return out.Bytes(), err
}

func TestPeriodCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "period", "--month", "2025-08")
	require.NoError(t, err)

	var w period.Window
	require.NoError(t, json.Unmarshal(out, &w))
	assert.Equal(t, "2025-08", w.Text)
	assert.Equal(t, period.GranularityMonth, w.Granularity)
	assert.Equal(t, 31, w.End.Day())

	_, err = execute(t, "period", "--month", "2025-13")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
}

func TestAgingCommand(t *testing.T) {
	useLedgerDB(t)

	out, err := execute(t, "aging", "--kind", "cxc", "--month", "2025-10")
	require.NoError(t, err)

	var l consolidation.Ledger
	require.NoError(t, json.Unmarshal(out, &l))
	assert.True(t, l.Aging.Days0to30.Equal(decimal.NewFromInt(1000)))
	assert.True(t, l.Aging.Days90Plus.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 3, l.Totals.OpenCount)
	require.True(t, l.KPI.DSO.Valid)
	assert.True(t, l.KPI.DSO.Decimal.Equal(decimal.NewFromInt(40)))

	_, err = execute(t, "aging", "--kind", "inventario")
	assert.Error(t, err)
}

func TestKPIsCommand(t *testing.T) {
	useLedgerDB(t)

	out, err := execute(t, "kpis", "--month", "2025-10", "--dio", "10")
	require.NoError(t, err)

	var k KPIOutput
	require.NoError(t, json.Unmarshal(out, &k))
	assert.True(t, k.KPI.DPO.Decimal.Equal(decimal.RequireFromString("22.5")))
	// 40 - 22.5 + 10
	assert.True(t, k.KPI.CCC.Decimal.Equal(decimal.RequireFromString("27.5")))
}

func TestReportCommand_OutputFile(t *testing.T) {
	useLedgerDB(t)
	path := filepath.Join(t.TempDir(), "pack.json")

	out, err := execute(t, "report", "--month", "2025-10", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	rep := readJSON[report.Report](t, path)
	assert.Equal(t, "2025-10", rep.Pack.Period)
	assert.True(t, rep.Pack.Balances.NWCProxy.Decimal.Equal(decimal.NewFromInt(1000)))
}

func TestViewCommands(t *testing.T) {
	useLedgerDB(t)

	out, err := execute(t, "top-overdue", "--kind", "cxc", "--month", "2025-10", "-n", "1")
	require.NoError(t, err)
	var top ListOutput
	require.NoError(t, json.Unmarshal(out, &top))
	require.Len(t, top.Items, 1)
	assert.Equal(t, "FC-3", top.Items[0].InvoiceID)

	out, err = execute(t, "balance", "cliente uno", "--kind", "cxc", "--month", "2025-10")
	require.NoError(t, err)
	var bal aging.Balance
	require.NoError(t, json.Unmarshal(out, &bal))
	assert.True(t, bal.Total.Equal(decimal.NewFromInt(2500)))

	out, err = execute(t, "due-soon", "--kind", "cxp", "--month", "2025-10", "--days", "7")
	require.NoError(t, err)
	var soon ListOutput
	require.NoError(t, json.Unmarshal(out, &soon))
	require.Len(t, soon.Items, 1)
	assert.Equal(t, "FP-1", soon.Items[0].InvoiceID)

	out, err = execute(t, "open", "--kind", "cxp", "--month", "2025-10")
	require.NoError(t, err)
	var open ListOutput
	require.NoError(t, json.Unmarshal(out, &open))
	assert.Len(t, open.Items, 2)
}

func TestReportCommand_MissingConfig(t *testing.T) {
	t.Setenv("SOURCE", "db")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "report", "--month", "2025-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func readJSON[T any](t *testing.T, path string) T {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}
