package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"asistente/internal/aging"
	"asistente/internal/consolidation"
	"asistente/internal/kpi"
	"asistente/internal/logger"
	"asistente/internal/period"
	"asistente/internal/report"
	"asistente/internal/source"
	"asistente/pkg/models"
)

// Reports is the reporting surface the API serves
type Reports interface {
	Ledger(ctx context.Context, kind models.Kind, w period.Window) (*consolidation.Ledger, error)
	Build(ctx context.Context, w period.Window, opts report.Options) (*report.Report, error)
	TopOverdue(ctx context.Context, kind models.Kind, w period.Window, n int) ([]aging.Row, error)
	CounterpartyBalance(ctx context.Context, kind models.Kind, w period.Window, nameOrID string) (aging.Balance, error)
	OpenItems(ctx context.Context, kind models.Kind, w period.Window) ([]aging.Row, error)
	DueSoon(ctx context.Context, kind models.Kind, w period.Window, days int) ([]aging.Row, error)
}

type Handler struct {
	reports  Reports
	resolver *period.Resolver
	topN     int
}

func NewHandler(reports Reports, resolver *period.Resolver, topN int) *Handler {
	if topN <= 0 {
		topN = aging.DefaultTopN
	}
	return &Handler{
		reports:  reports,
		resolver: resolver,
		topN:     topN,
	}
}

// KPIResponse is the body of the kpis endpoint
type KPIResponse struct {
	Kind   models.Kind   `json:"kind"`
	Period period.Window `json:"period"`
	KPI    kpi.Set       `json:"kpi"`
}

// ListResponse wraps the list views
type ListResponse struct {
	Kind   models.Kind   `json:"kind"`
	Period period.Window `json:"period"`
	Items  []aging.Row   `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Period(w http.ResponseWriter, r *http.Request) {
	window, ok := h.window(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, window)
}

func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	kind, window, ok := h.kindAndWindow(w, r)
	if !ok {
		return
	}

	ledger, err := h.reports.Ledger(r.Context(), kind, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ledger)
}

func (h *Handler) KPIs(w http.ResponseWriter, r *http.Request) {
	kind, window, ok := h.kindAndWindow(w, r)
	if !ok {
		return
	}

	ledger, err := h.reports.Ledger(r.Context(), kind, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, KPIResponse{Kind: kind, Period: window, KPI: ledger.KPI})
}

func (h *Handler) TopOverdue(w http.ResponseWriter, r *http.Request) {
	kind, window, ok := h.kindAndWindow(w, r)
	if !ok {
		return
	}
	n, ok := intParam(w, r, "n", h.topN)
	if !ok {
		return
	}
	if n <= 0 {
		n = h.topN
	}

	rows, err := h.reports.TopOverdue(r.Context(), kind, window, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ListResponse{Kind: kind, Period: window, Items: rows})
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	kind, window, ok := h.kindAndWindow(w, r)
	if !ok {
		return
	}

	bal, err := h.reports.CounterpartyBalance(r.Context(), kind, window, r.URL.Query().Get("counterparty"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, bal)
}

func (h *Handler) OpenItems(w http.ResponseWriter, r *http.Request) {
	kind, window, ok := h.kindAndWindow(w, r)
	if !ok {
		return
	}

	rows, err := h.reports.OpenItems(r.Context(), kind, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ListResponse{Kind: kind, Period: window, Items: rows})
}

func (h *Handler) DueSoon(w http.ResponseWriter, r *http.Request) {
	kind, window, ok := h.kindAndWindow(w, r)
	if !ok {
		return
	}
	days, ok := intParam(w, r, "days", aging.DefaultDueSoonDays)
	if !ok {
		return
	}

	rows, err := h.reports.DueSoon(r.Context(), kind, window, days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ListResponse{Kind: kind, Period: window, Items: rows})
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	window, ok := h.window(w, r)
	if !ok {
		return
	}

	var opts report.Options
	if raw := r.URL.Query().Get("dio"); raw != "" {
		dio, err := decimal.NewFromString(raw)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid 'dio': %q is not a number", raw)})
			return
		}
		opts.DIO = decimal.NewNullDecimal(dio)
	}

	rep, err := h.reports.Build(r.Context(), window, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

// window resolves the period query parameters: start/end, month, then period
// (natural text), falling back to the current month. as_of moves the aging
// reference date.
func (h *Handler) window(w http.ResponseWriter, r *http.Request) (period.Window, bool) {
	q := r.URL.Query()
	window, err := h.resolver.Resolve(period.Request{
		Start:   q.Get("start"),
		End:     q.Get("end"),
		Text:    q.Get("text"),
		Month:   q.Get("month"),
		Natural: q.Get("period"),
		AsOf:    q.Get("as_of"),
	})
	if err != nil {
		writeError(w, r, err)
		return period.Window{}, false
	}
	return window, true
}

func (h *Handler) kindAndWindow(w http.ResponseWriter, r *http.Request) (models.Kind, period.Window, bool) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", period.Window{}, false
	}
	window, ok := h.window(w, r)
	return kind, window, ok
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid '%s': expected a non-negative integer", name)})
		return 0, false
	}
	return n, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, period.ErrInvalidPeriod),
		errors.Is(err, report.ErrInvalidKind),
		errors.Is(err, aging.ErrMissingCounterparty):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrDataAccess):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
