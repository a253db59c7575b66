// Package source defines where invoices come from. A Source hands out one
// consistent snapshot of receivables and payables per call; the relational store
// and the Google Sheets reader both implement it.
package source

import (
	"context"

	"asistente/pkg/models"
)

// Source reads a consistent invoice snapshot.
type Source interface {
	// Snapshot reads receivables and payables from one consistent view of the
	// backend. Errors are *DataAccessError.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Name identifies the backend in logs and errors ("postgres", "sqlite", "sheets").
	Name() string
}

// Snapshot is everything a report needs from the backend, read at once.
type Snapshot struct {
	Receivables []models.Invoice
	Payables    []models.Invoice

	// Missing lists the monetary fields that were absent and defaulted to zero.
	Missing []*MissingFieldError
}

// Invoices returns the side of the ledger selected by kind
func (s *Snapshot) Invoices(kind models.Kind) []models.Invoice {
	if kind == models.KindPayable {
		return s.Payables
	}
	return s.Receivables
}

// DefaultedCount returns how many distinct records of kind had at least one
// field defaulted.
func (s *Snapshot) DefaultedCount(kind models.Kind) int {
	seen := make(map[string]struct{})
	for _, m := range s.Missing {
		if m.Kind == kind {
			seen[m.Record] = struct{}{}
		}
	}
	return len(seen)
}

// AddMissing records a defaulted field
func (s *Snapshot) AddMissing(kind models.Kind, record, field string) {
	s.Missing = append(s.Missing, &MissingFieldError{Kind: kind, Record: record, Field: field})
}
