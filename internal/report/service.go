// Package report orchestrates one source snapshot into ledgers, list views and
// the consolidated report. Every call receives its period explicitly and reads
// the source exactly once.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"asistente/internal/advisory"
	"asistente/internal/aging"
	"asistente/internal/consolidation"
	"asistente/internal/kpi"
	"asistente/internal/logger"
	"asistente/internal/period"
	"asistente/internal/source"
	"asistente/pkg/models"
)

// ErrInvalidKind is returned for a ledger kind other than receivable or payable.
var ErrInvalidKind = errors.New("invalid ledger kind")

// Options tunes a full report
type Options struct {
	// DIO is days inventory outstanding when known; it extends CCC.
	DIO decimal.NullDecimal
}

// Report is the full management view of one period
type Report struct {
	ID            string                `json:"id"`
	GeneratedAt   time.Time             `json:"generated_at"`
	Source        string                `json:"source"`
	Period        period.Window         `json:"period"`
	Receivables   *consolidation.Ledger `json:"receivables"`
	Payables      *consolidation.Ledger `json:"payables"`
	Pack          consolidation.Pack    `json:"pack"`
	Findings      []string              `json:"hallazgos"`
	Orders        []advisory.Order      `json:"orders"`
	Hypotheses    []string              `json:"hypotheses"`
	LiquidityRisk *advisory.Risk        `json:"liquidity_risk"`
}

// Service computes reports over a source
type Service struct {
	src   source.Source
	rules advisory.Rules
	now   func() time.Time
	log   zerolog.Logger
}

// NewService creates a report service
func NewService(src source.Source, rules advisory.Rules) *Service {
	return &Service{
		src:   src,
		rules: rules,
		now:   time.Now,
		log:   logger.WithComponent("report"),
	}
}

// WithClock replaces the clock used for GeneratedAt
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) snapshot(ctx context.Context, op string) (*source.Snapshot, error) {
	snap, err := s.src.Snapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Str("source", s.src.Name()).Msg("Failed to read invoice snapshot")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if n := len(snap.Missing); n > 0 {
		s.log.Warn().Int("defaulted_fields", n).Str("op", op).Msg("Monetary fields missing, treated as 0")
	}
	return snap, nil
}

func checkKind(kind models.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

// Ledger computes aging, totals and the turnover KPI of one side of the books.
func (s *Service) Ledger(ctx context.Context, kind models.Kind, w period.Window) (*consolidation.Ledger, error) {
	const op = "Ledger"
	if err := checkKind(kind); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap, err := s.snapshot(ctx, op)
	if err != nil {
		return nil, err
	}
	return buildLedger(snap, kind, w), nil
}

// buildLedger is pure: the same snapshot and window always give the same ledger.
func buildLedger(snap *source.Snapshot, kind models.Kind, w period.Window) *consolidation.Ledger {
	invoices := snap.Invoices(kind)
	computed := aging.Compute(invoices, w.ReferenceDate())

	var set kpi.Set
	if kind == models.KindPayable {
		set.DPO = kpi.DPO(invoices, w)
	} else {
		set.DSO = kpi.DSO(invoices, w)
	}

	return &consolidation.Ledger{
		Kind:             kind,
		Period:           w,
		Aging:            computed.Aging,
		Totals:           computed.Totals,
		KPI:              set,
		DefaultedRecords: snap.DefaultedCount(kind),
	}
}

// Build computes both ledgers from a single snapshot, consolidates them and
// adds the advisory reading.
func (s *Service) Build(ctx context.Context, w period.Window, opts Options) (*Report, error) {
	const op = "Build"

	snap, err := s.snapshot(ctx, op)
	if err != nil {
		return nil, err
	}

	ar := buildLedger(snap, models.KindReceivable, w)
	ap := buildLedger(snap, models.KindPayable, w)

	pack, err := consolidation.Consolidate(consolidation.Input{
		Period:      w.Text,
		Receivables: ar,
		Payables:    ap,
		DIO:         opts.DIO,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	assessment := advisory.Assess(pack, s.rules, w.End)

	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		Source:      s.src.Name(),
		Period:      w,
		Receivables: ar,
		Payables:    ap,
		Pack:        pack,
		Findings:    assessment.Findings,
		Orders:      assessment.Orders,
		Hypotheses:  advisory.Hypotheses(pack.KPI, &ar.Aging, &ap.Aging, s.rules),
	}
	if risk, ok := advisory.LiquidityRisk(pack.KPI.DSO, pack.KPI.DPO, pack.KPI.CCC); ok {
		r.LiquidityRisk = &risk
	}

	s.log.Info().
		Str("report_id", r.ID).
		Str("period", w.Text).
		Int("receivables_open", ar.Totals.OpenCount).
		Int("payables_open", ap.Totals.OpenCount).
		Int("findings", len(r.Findings)).
		Msg("Report built")

	return r, nil
}

// TopOverdue lists the n most overdue open invoices at the end of w.
func (s *Service) TopOverdue(ctx context.Context, kind models.Kind, w period.Window, n int) ([]aging.Row, error) {
	invoices, err := s.invoices(ctx, "TopOverdue", kind)
	if err != nil {
		return nil, err
	}
	return aging.TopOverdue(invoices, w.ReferenceDate(), n), nil
}

// CounterpartyBalance sums the open invoices of one customer or supplier.
func (s *Service) CounterpartyBalance(ctx context.Context, kind models.Kind, w period.Window, nameOrID string) (aging.Balance, error) {
	const op = "CounterpartyBalance"
	invoices, err := s.invoices(ctx, op, kind)
	if err != nil {
		return aging.Balance{}, err
	}
	bal, err := aging.CounterpartyBalance(invoices, w.ReferenceDate(), nameOrID)
	if err != nil {
		return aging.Balance{}, fmt.Errorf("%s: %w", op, err)
	}
	return bal, nil
}

// OpenItems lists every open invoice with its status at the end of w.
func (s *Service) OpenItems(ctx context.Context, kind models.Kind, w period.Window) ([]aging.Row, error) {
	invoices, err := s.invoices(ctx, "OpenItems", kind)
	if err != nil {
		return nil, err
	}
	return aging.OpenItems(invoices, w.ReferenceDate()), nil
}

// DueSoon lists open invoices falling due within days of the end of w.
func (s *Service) DueSoon(ctx context.Context, kind models.Kind, w period.Window, days int) ([]aging.Row, error) {
	invoices, err := s.invoices(ctx, "DueSoon", kind)
	if err != nil {
		return nil, err
	}
	return aging.DueSoon(invoices, w.ReferenceDate(), days), nil
}

func (s *Service) invoices(ctx context.Context, op string, kind models.Kind) ([]models.Invoice, error) {
	if err := checkKind(kind); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	snap, err := s.snapshot(ctx, op)
	if err != nil {
		return nil, err
	}
	return snap.Invoices(kind), nil
}
