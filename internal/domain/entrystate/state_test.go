package entrystate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/entrystate"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func boolPtr(b bool) *bool { return &b }

func normalEntry(qty int64) *entity.StockEntry {
	return &entity.StockEntry{
		ID:         "e-1",
		Stream:     entity.StreamNormal,
		CountedQty: decimal.NewFromInt(qty),
		Status:     entity.StatusNormal,
		TagNo:      "T-01",
	}
}

func fgEntry(qty, pack int64) *entity.StockEntry {
	return &entity.StockEntry{
		ID:         "fg-1",
		Stream:     entity.StreamFG,
		CountedQty: decimal.NewFromInt(qty),
		PackCount:  dec(pack),
		Status:     entity.StatusNormal,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cero
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_MarcarCeroPoneCantidadEnCero(t *testing.T) {
	e := normalEntry(50)

	out, err := entrystate.Apply(e, entrystate.Patch{IsZero: boolPtr(true)})
	require.NoError(t, err)

	assert.True(t, e.IsZero)
	assert.True(t, e.CountedQty.IsZero(), "cantidad debe quedar en 0")
	assert.Contains(t, out.Applied, entrystate.FieldIsZero)
}

func TestApply_CeroFGTambienPoneEmpaquesEnCero(t *testing.T) {
	e := fgEntry(10, 4)

	_, err := entrystate.Apply(e, entrystate.Patch{IsZero: boolPtr(true)})
	require.NoError(t, err)

	assert.True(t, e.CountedQty.IsZero())
	require.NotNil(t, e.PackCount)
	assert.True(t, e.PackCount.IsZero())
}

func TestApply_CantidadRechazadaMientrasCero(t *testing.T) {
	e := normalEntry(0)
	e.IsZero = true

	out, err := entrystate.Apply(e, entrystate.Patch{CountedQty: dec(12)})
	require.NoError(t, err)

	assert.True(t, e.CountedQty.IsZero())
	assert.Equal(t, []entrystate.Field{entrystate.FieldCountedQty}, out.Rejected)
}

func TestApply_DesmarcarCeroNoRestauraValor(t *testing.T) {
	e := normalEntry(50)
	_, err := entrystate.Apply(e, entrystate.Patch{IsZero: boolPtr(true)})
	require.NoError(t, err)

	_, err = entrystate.Apply(e, entrystate.Patch{IsZero: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, e.IsZero)
	assert.True(t, e.CountedQty.IsZero(), "no debe volver a 50")

	_, err = entrystate.Apply(e, entrystate.Patch{CountedQty: dec(7)})
	require.NoError(t, err)
	assert.True(t, e.CountedQty.Equal(decimal.NewFromInt(7)))
}

func TestApply_DesmarcarCeroYCantidadEnElMismoPatch(t *testing.T) {
	e := normalEntry(0)
	e.IsZero = true

	out, err := entrystate.Apply(e, entrystate.Patch{IsZero: boolPtr(false), CountedQty: dec(9)})
	require.NoError(t, err)
	assert.Empty(t, out.Rejected)
	assert.True(t, e.CountedQty.Equal(decimal.NewFromInt(9)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_AnuladaCongelaCantidades(t *testing.T) {
	e := fgEntry(30, 3)
	e.IsCancel = true

	out, err := entrystate.Apply(e, entrystate.Patch{CountedQty: dec(99), PackCount: dec(9)})
	require.NoError(t, err)

	assert.True(t, e.CountedQty.Equal(decimal.NewFromInt(30)))
	assert.True(t, e.PackCount.Equal(decimal.NewFromInt(3)))
	assert.ElementsMatch(t, []entrystate.Field{entrystate.FieldCountedQty, entrystate.FieldPackCount}, out.Rejected)
}

func TestApply_AnularNoPoneCantidadEnCero(t *testing.T) {
	e := normalEntry(30)

	_, err := entrystate.Apply(e, entrystate.Patch{IsCancel: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, e.CountedQty.Equal(decimal.NewFromInt(30)))
}

func TestApply_AnuladaPermiteEstadoYTag(t *testing.T) {
	e := normalEntry(30)
	e.IsCancel = true
	qa := entity.StatusQA
	tag := "T-99"

	out, err := entrystate.Apply(e, entrystate.Patch{Status: &qa, TagNo: &tag, CountedQty: dec(1)})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusQA, e.Status)
	assert.Equal(t, "T-99", e.TagNo)
	assert.Equal(t, []entrystate.Field{entrystate.FieldCountedQty}, out.Rejected)
}

func TestApply_AnularYCantidadEnElMismoPatch(t *testing.T) {
	e := normalEntry(30)

	out, err := entrystate.Apply(e, entrystate.Patch{IsCancel: boolPtr(true), CountedQty: dec(5)})
	require.NoError(t, err)
	assert.True(t, e.CountedQty.Equal(decimal.NewFromInt(30)))
	assert.Contains(t, out.Rejected, entrystate.FieldCountedQty)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado y validación
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EstadoSinRestricciones(t *testing.T) {
	e := normalEntry(1)
	for _, st := range []entity.EntryStatus{entity.StatusReject, entity.StatusNormal, entity.StatusQA, entity.StatusReject} {
		s := st
		_, err := entrystate.Apply(e, entrystate.Patch{Status: &s})
		require.NoError(t, err)
		assert.Equal(t, st, e.Status)
	}
}

func TestApply_ValidacionNoModificaNada(t *testing.T) {
	cases := []struct {
		name  string
		entry *entity.StockEntry
		patch entrystate.Patch
	}{
		{"estado desconocido", normalEntry(5), entrystate.Patch{Status: func() *entity.EntryStatus { s := entity.EntryStatus("HOLD"); return &s }(), IsZero: boolPtr(true)}},
		{"cantidad negativa", normalEntry(5), entrystate.Patch{CountedQty: dec(-1), IsCancel: boolPtr(true)}},
		{"empaques en flujo general", normalEntry(5), entrystate.Patch{PackCount: dec(2)}},
		{"empaques negativos", fgEntry(5, 1), entrystate.Patch{PackCount: dec(-2)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.entry.Clone()
			_, err := entrystate.Apply(tc.entry, tc.patch)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, before, *tc.entry)
		})
	}
}

func TestApply_InvarianteCeroSiempre(t *testing.T) {
	patches := []entrystate.Patch{
		{IsZero: boolPtr(true)},
		{CountedQty: dec(4)},
		{IsCancel: boolPtr(true)},
		{IsZero: boolPtr(false), CountedQty: dec(3)},
		{IsCancel: boolPtr(false), IsZero: boolPtr(true), PackCount: dec(8)},
		{CountedQty: dec(11), PackCount: dec(2)},
	}
	e := fgEntry(20, 5)
	for _, p := range patches {
		_, err := entrystate.Apply(e, p)
		require.NoError(t, err)
		if e.IsZero {
			assert.True(t, e.CountedQty.IsZero())
			assert.True(t, e.PackCount.IsZero())
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// BuildReviewUpdate
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildReviewUpdate_CamposAcotados(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := fgEntry(12, 3)
	e.TagNo = "TAG-7"
	e.Status = entity.StatusQA

	upd := entrystate.BuildReviewUpdate(*e, "user-1", now)

	assert.Equal(t, "TAG-7", upd.TagNo)
	assert.True(t, upd.CountedQty.Equal(decimal.NewFromInt(12)))
	require.NotNil(t, upd.PackCount)
	assert.True(t, upd.PackCount.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, entity.StatusQA, upd.Status)
	assert.Equal(t, "user-1", upd.UpdatedBy)
	assert.Equal(t, now, upd.UpdatedAt)
}

func TestBuildReviewUpdate_GeneralSinEmpaques(t *testing.T) {
	upd := entrystate.BuildReviewUpdate(*normalEntry(3), "u", time.Now())
	assert.Nil(t, upd.PackCount)
}
