package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"asistente/internal/source"
	"asistente/pkg/models"
)

const entityTable = "entidad"

type ledgerTable struct {
	name         string
	entityColumn string
	kind         models.Kind
	label        string
}

var (
	receivablesTable = ledgerTable{
		name:         "factura_cxc",
		entityColumn: "id_entidad_cliente",
		kind:         models.KindReceivable,
		label:        "Receivables",
	}
	payablesTable = ledgerTable{
		name:         "factura_cxp",
		entityColumn: "id_entidad_proveedor",
		kind:         models.KindPayable,
		label:        "Payables",
	}
)

// invoiceRow mirrors one joined invoice/entity row
type invoiceRow struct {
	Number      sql.NullString      `db:"numero_factura"`
	IssueDate   nullDate            `db:"fecha_emision"`
	DueDate     nullDate            `db:"fecha_limite"`
	PaymentDate nullDate            `db:"fecha_pago"`
	Amount      decimal.NullDecimal `db:"monto"`
	Paid        decimal.NullDecimal `db:"monto_pagado"`
	EntityID    sql.NullString      `db:"id_entidad"`
	EntityName  sql.NullString      `db:"nombre_legal"`
}

func (r *invoiceRow) toInvoice(kind models.Kind, pos int, snap *source.Snapshot) models.Invoice {
	id := strings.TrimSpace(r.Number.String)
	if id == "" {
		id = fmt.Sprintf("row-%d", pos+1)
	}

	inv := models.Invoice{
		ID:             id,
		Kind:           kind,
		CounterpartyID: strings.TrimSpace(r.EntityID.String),
		Counterparty:   strings.TrimSpace(r.EntityName.String),
		IssueDate:      r.IssueDate.Time,
		DueDate:        r.DueDate.Time,
		PaymentDate:    r.PaymentDate.Time,
		GrossAmount:    decimal.Zero,
		PaidAmount:     decimal.Zero,
		Currency:       models.DefaultCurrency,
	}
	if inv.Counterparty == "" {
		inv.Counterparty = inv.CounterpartyID
	}

	if r.Amount.Valid {
		inv.GrossAmount = r.Amount.Decimal
	} else {
		snap.AddMissing(kind, id, "monto")
	}
	if r.Paid.Valid {
		inv.PaidAmount = r.Paid.Decimal
	} else {
		snap.AddMissing(kind, id, "monto_pagado")
	}

	return inv
}

// Layouts for dates stored as text (SQLite has no native date type)
var textDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// nullDate scans DATE/TIMESTAMP columns whatever the driver hands back. Only the
// calendar date is kept; NULL leaves the zero time.
type nullDate struct {
	Time time.Time
}

// Scan implements sql.Scanner
func (d *nullDate) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = calendarDate(v)
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("store: cannot scan %T into a date", value)
	}
}

func (d *nullDate) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = calendarDate(t)
			return nil
		}
	}
	return fmt.Errorf("store: unrecognised date %q", s)
}

func calendarDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
