// Package store reads receivable and payable invoices from the relational
// database (factura_cxc, factura_cxp and entidad) through sqlx. PostgreSQL is
// served by lib/pq and SQLite by modernc.org/sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"asistente/internal/logger"
	"asistente/internal/source"
	"asistente/pkg/models"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultSchema is where the invoice tables live on PostgreSQL.
const DefaultSchema = "agente_virtual"

// Settings selects and addresses the database
type Settings struct {
	Driver string // postgres or sqlite
	DSN    string // connection string or sqlite file path
	Schema string // postgres schema; ignored on sqlite
}

// Store is a source.Source over the invoice tables
type Store struct {
	db     *sqlx.DB
	driver string
	schema string
	logger zerolog.Logger
}

var _ source.Source = (*Store)(nil)

// Open connects to the configured database and verifies it with a ping.
func Open(ctx context.Context, s Settings) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("store: %w: %q", source.ErrUnknownBackend, s.Driver)
	}
	if s.DSN == "" {
		return nil, fmt.Errorf("store: DATABASE_URL is required for driver %s", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, s.DSN)
	if err != nil {
		return nil, source.NewDataAccessError(driver, "Connect", err, "")
	}
	if driver == DriverSQLite && strings.Contains(s.DSN, ":memory:") {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	return New(db, driver, s.Schema), nil
}

// New wraps an open connection. The schema only applies to postgres.
func New(db *sqlx.DB, driver, schema string) *Store {
	if driver != DriverPostgres {
		schema = ""
	}
	return &Store{
		db:     db,
		driver: driver,
		schema: schema,
		logger: logger.WithComponent("store"),
	}
}

// Name implements source.Source
func (s *Store) Name() string {
	return s.driver
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return source.NewDataAccessError(s.driver, "Ping", err, "")
	}
	return nil
}

// Snapshot reads both ledgers inside one read-only transaction so aging, totals
// and KPIs of a report all see the same data.
func (s *Store) Snapshot(ctx context.Context) (*source.Snapshot, error) {
	tx, err := s.db.BeginTxx(ctx, s.txOptions())
	if err != nil {
		return nil, source.NewDataAccessError(s.driver, "BeginTx", err, "")
	}
	// read-only: rollback is the normal way out
	defer tx.Rollback() //nolint:errcheck

	snap := &source.Snapshot{}

	snap.Receivables, err = s.readLedger(ctx, tx, snap, receivablesTable)
	if err != nil {
		return nil, err
	}
	snap.Payables, err = s.readLedger(ctx, tx, snap, payablesTable)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("receivables", len(snap.Receivables)).
		Int("payables", len(snap.Payables)).
		Int("defaulted_fields", len(snap.Missing)).
		Msg("Invoice snapshot read")

	return snap, nil
}

func (s *Store) txOptions() *sql.TxOptions {
	if s.driver == DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	// SQLite transactions are serializable already
	return nil
}

func (s *Store) readLedger(ctx context.Context, tx *sqlx.Tx, snap *source.Snapshot, t ledgerTable) ([]models.Invoice, error) {
	var rows []invoiceRow
	if err := tx.SelectContext(ctx, &rows, s.ledgerQuery(t)); err != nil {
		return nil, source.NewDataAccessError(s.driver, "Query"+t.label, err, t.name)
	}

	invoices := make([]models.Invoice, 0, len(rows))
	for i := range rows {
		invoices = append(invoices, rows[i].toInvoice(t.kind, i, snap))
	}
	return invoices, nil
}

func (s *Store) ledgerQuery(t ledgerTable) string {
	return fmt.Sprintf(`
		SELECT
			f.numero_factura,
			f.fecha_emision,
			f.fecha_limite,
			f.fecha_pago,
			f.monto,
			f.monto_pagado,
			e.id_entidad,
			e.nombre_legal
		FROM %s f
		LEFT JOIN %s e ON e.id_entidad = f.%s
		ORDER BY f.numero_factura`,
		s.qualify(t.name), s.qualify(entityTable), t.entityColumn)
}

func (s *Store) qualify(table string) string {
	if s.schema == "" {
		return table
	}
	return pq.QuoteIdentifier(s.schema) + "." + table
}
