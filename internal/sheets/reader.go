package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"asistente/internal/logger"
	"asistente/internal/source"
	"asistente/pkg/models"
)

// Default worksheet names
const (
	DefaultReceivablesSheet = "CxC"
	DefaultPayablesSheet    = "CxP"
)

const backendName = "sheets"

// Logical columns, resolved from the header row by alias
const (
	colInvoiceID    = "invoice_id"
	colCounterparty = "counterparty"
	colCounterID    = "counterparty_id"
	colIssueDate    = "issue_date"
	colDueDate      = "due_date"
	colPaymentDate  = "payment_date"
	colBaseAmount   = "base_amount"
	colTax          = "tax"
	colTotalAmount  = "total_amount"
	colPaidAmount   = "paid_amount"
	colCurrency     = "currency"
)

var headerAliases = map[string]string{
	"invoice_id":           colInvoiceID,
	"invoice":              colInvoiceID,
	"numero_factura":       colInvoiceID,
	"factura":              colInvoiceID,
	"customer":             colCounterparty,
	"supplier":             colCounterparty,
	"counterparty":         colCounterparty,
	"cliente":              colCounterparty,
	"proveedor":            colCounterparty,
	"nombre_legal":         colCounterparty,
	"customer_id":          colCounterID,
	"supplier_id":          colCounterID,
	"id_entidad":           colCounterID,
	"id_entidad_cliente":   colCounterID,
	"id_entidad_proveedor": colCounterID,
	"issue_date":           colIssueDate,
	"fecha_emision":        colIssueDate,
	"due_date":             colDueDate,
	"fecha_limite":         colDueDate,
	"fecha_vencimiento":    colDueDate,
	"payment_date":         colPaymentDate,
	"fecha_pago":           colPaymentDate,
	"base_amount":          colBaseAmount,
	"subtotal":             colBaseAmount,
	"tax":                  colTax,
	"iva":                  colTax,
	"impuesto":             colTax,
	"total_amount":         colTotalAmount,
	"amount":               colTotalAmount,
	"monto":                colTotalAmount,
	"total":                colTotalAmount,
	"paid_amount":          colPaidAmount,
	"monto_pagado":         colPaidAmount,
	"pagado":               colPaidAmount,
	"currency":             colCurrency,
	"moneda":               colCurrency,
}

// Reader is a source.Source over a spreadsheet with one worksheet per ledger.
type Reader struct {
	ranges           RangeReader
	receivablesSheet string
	payablesSheet    string
	log              zerolog.Logger
}

var _ source.Source = (*Reader)(nil)

// NewReader creates a reader. Empty sheet names fall back to CxC and CxP.
func NewReader(ranges RangeReader, receivablesSheet, payablesSheet string) *Reader {
	if receivablesSheet == "" {
		receivablesSheet = DefaultReceivablesSheet
	}
	if payablesSheet == "" {
		payablesSheet = DefaultPayablesSheet
	}
	return &Reader{
		ranges:           ranges,
		receivablesSheet: receivablesSheet,
		payablesSheet:    payablesSheet,
		log:              logger.WithComponent("sheets-reader"),
	}
}

// Name implements source.Source
func (r *Reader) Name() string {
	return backendName
}

// Snapshot reads both worksheets. Sheets has no transactions, so the two reads
// are only as consistent as the spreadsheet is between them.
func (r *Reader) Snapshot(ctx context.Context) (*source.Snapshot, error) {
	snap := &source.Snapshot{}

	var err error
	snap.Receivables, err = r.ReadInvoices(ctx, models.KindReceivable, snap)
	if err != nil {
		return nil, err
	}
	snap.Payables, err = r.ReadInvoices(ctx, models.KindPayable, snap)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *Reader) sheetFor(kind models.Kind) string {
	if kind == models.KindPayable {
		return r.payablesSheet
	}
	return r.receivablesSheet
}

// ReadInvoices reads one ledger. Defaulted monetary fields are recorded on snap.
func (r *Reader) ReadInvoices(ctx context.Context, kind models.Kind, snap *source.Snapshot) ([]models.Invoice, error) {
	const op = "ReadInvoices"
	sheetName := r.sheetFor(kind)

	r.log.Info().Str("sheet", sheetName).Str("kind", string(kind)).Msg("Reading invoices")

	values, err := r.ranges.ReadRange(ctx, sheetName+"!A:Z")
	if err != nil {
		return nil, source.NewDataAccessError(backendName, op, err, sheetName)
	}
	if len(values) == 0 {
		r.log.Warn().Str("sheet", sheetName).Msg("Sheet is empty")
		return []models.Invoice{}, nil
	}

	columns, err := mapHeader(values[0])
	if err != nil {
		return nil, source.NewDataAccessError(backendName, op, err, sheetName)
	}

	invoices := make([]models.Invoice, 0, len(values)-1)
	for i, row := range values[1:] {
		rowNum := i + 2 // header is row 1

		if isBlank(row) {
			continue
		}

		inv := r.parseInvoiceRow(row, rowNum, kind, columns, snap)
		invoices = append(invoices, inv)
	}

	r.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_invoices", len(invoices)).
		Str("sheet", sheetName).
		Msg("Invoices read successfully")

	return invoices, nil
}

// mapHeader resolves logical column names to positions.
func mapHeader(header []interface{}) (map[string]int, error) {
	columns := make(map[string]int)
	for i := range header {
		name := strings.ToLower(strings.ReplaceAll(getString(header, i), " ", "_"))
		if logical, ok := headerAliases[name]; ok {
			if _, seen := columns[logical]; !seen {
				columns[logical] = i
			}
		}
	}

	var missing []string
	if _, ok := columns[colInvoiceID]; !ok {
		missing = append(missing, colInvoiceID)
	}
	if _, ok := columns[colDueDate]; !ok {
		missing = append(missing, colDueDate)
	}
	_, hasTotal := columns[colTotalAmount]
	_, hasBase := columns[colBaseAmount]
	if !hasTotal && !hasBase {
		missing = append(missing, colTotalAmount+"|"+colBaseAmount)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func (r *Reader) parseInvoiceRow(row []interface{}, rowNum int, kind models.Kind, columns map[string]int, snap *source.Snapshot) models.Invoice {
	cell := func(name string) interface{} {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return nil
		}
		return row[idx]
	}
	text := func(name string) string {
		idx, ok := columns[name]
		if !ok {
			return ""
		}
		return getString(row, idx)
	}

	id := text(colInvoiceID)
	if id == "" {
		id = fmt.Sprintf("row-%d", rowNum)
	}

	inv := models.Invoice{
		ID:             id,
		Kind:           kind,
		Counterparty:   text(colCounterparty),
		CounterpartyID: text(colCounterID),
		Currency:       normalizeCurrency(text(colCurrency)),
		IssueDate:      r.dateCell(text(colIssueDate), colIssueDate, rowNum),
		DueDate:        r.dateCell(text(colDueDate), colDueDate, rowNum),
		PaymentDate:    r.dateCell(text(colPaymentDate), colPaymentDate, rowNum),
	}

	// total_amount wins; otherwise gross is base + tax
	if total, ok := r.amountCell(cell(colTotalAmount), colTotalAmount, rowNum); ok {
		inv.GrossAmount = total
	} else {
		base, baseOK := r.amountCell(cell(colBaseAmount), colBaseAmount, rowNum)
		tax, _ := r.amountCell(cell(colTax), colTax, rowNum)
		inv.GrossAmount = base.Add(tax)
		if !baseOK {
			snap.AddMissing(kind, id, colTotalAmount)
		}
	}

	paid, ok := r.amountCell(cell(colPaidAmount), colPaidAmount, rowNum)
	if !ok {
		snap.AddMissing(kind, id, colPaidAmount)
	}
	inv.PaidAmount = paid

	return inv
}
