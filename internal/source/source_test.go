package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"asistente/pkg/models"
)

func TestDataAccessError(t *testing.T) {
	err := NewDataAccessError("postgres", "QueryReceivables", context.DeadlineExceeded, "factura_cxc")

	assert.True(t, errors.Is(err, ErrDataAccess))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "source postgres: QueryReceivables failed: factura_cxc: context deadline exceeded", err.Error())

	wrapped := WrapDataAccessError("sqlite", "Snapshot", err, "")
	assert.Same(t, err, wrapped)

	assert.Nil(t, WrapDataAccessError("sqlite", "Snapshot", nil, ""))
}

func TestSnapshot_DefaultedCount(t *testing.T) {
	snap := &Snapshot{}
	snap.AddMissing(models.KindReceivable, "F-1", "monto")
	snap.AddMissing(models.KindReceivable, "F-1", "monto_pagado")
	snap.AddMissing(models.KindReceivable, "F-2", "monto_pagado")
	snap.AddMissing(models.KindPayable, "P-9", "monto")

	assert.Equal(t, 2, snap.DefaultedCount(models.KindReceivable))
	assert.Equal(t, 1, snap.DefaultedCount(models.KindPayable))
	assert.Equal(t, `CxC record "F-1": missing monto, defaulted to 0`, snap.Missing[0].Error())
}

func TestSnapshot_Invoices(t *testing.T) {
	snap := &Snapshot{
		Receivables: []models.Invoice{{ID: "R"}},
		Payables:    []models.Invoice{{ID: "P"}},
	}

	assert.Equal(t, "R", snap.Invoices(models.KindReceivable)[0].ID)
	assert.Equal(t, "P", snap.Invoices(models.KindPayable)[0].ID)
}
