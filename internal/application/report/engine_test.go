package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockCount-api/internal/application/report"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

type aggCall struct {
	procedure string
	params    repository.AggregateParams
}

// fakeReports devuelve filas con todos los campos opcionales llenos, como haría un
// procedimiento mal configurado: el motor debe recortarlos.
type fakeReports struct {
	calls []aggCall
	rows  []entity.ReportRow
	err   error
}

func (f *fakeReports) Aggregate(_ context.Context, procedure string, params repository.AggregateParams) ([]entity.ReportRow, error) {
	f.calls = append(f.calls, aggCall{procedure: procedure, params: params})
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type plants []entity.Plant

func (p plants) ListActive(context.Context) ([]entity.Plant, error) { return p, nil }

func strPtr(s string) *string { return &s }

func fullRow(material string, qty int64) entity.ReportRow {
	pack := decimal.NewFromInt(2)
	return entity.ReportRow{
		PlantCode:    "P1",
		LocationCode: strPtr("L-01"),
		MaterialName: material,
		EntryUOM:     "KG",
		Status:       strPtr("NORMAL"),
		TotalQty:     decimal.NewFromInt(qty),
		TotalPack:    &pack,
	}
}

func newEngine(reports *fakeReports) *report.Engine {
	resolver := access.NewResolver(plants{
		{ID: "plant-1", Code: "P1", Active: true},
		{ID: "plant-2", Code: "P2", Active: true},
	})
	return report.NewEngine(resolver, reports, zerolog.Nop())
}

var (
	editorP = &entity.Profile{UserID: "e", Role: entity.RoleEditor, PlantID: "plant-1", PlantCode: "P1", Active: true}
	entryP  = &entity.Profile{UserID: "n", Role: entity.RoleEntry, PlantID: "plant-1", PlantCode: "P1", Active: true}
	adminP  = &entity.Profile{UserID: "a", Role: entity.RoleAdmin, Active: true}
)

func TestAggregate_ReportePorPlantaSinUbicacion(t *testing.T) {
	reports := &fakeReports{rows: []entity.ReportRow{fullRow("Harina", 10), fullRow("Sal", 4)}}
	eng := newEngine(reports)

	rep, err := eng.Aggregate(context.Background(), editorP, report.FamilyGeneral, report.KeyB, report.Filters{MaterialType: "rm"})
	require.NoError(t, err)

	require.Len(t, reports.calls, 1)
	call := reports.calls[0]
	assert.Equal(t, "report_non_admin_tab_b", call.procedure)
	assert.Equal(t, "plant-1", call.params.PlantID)
	require.NotNil(t, call.params.MaterialType)
	assert.Equal(t, "RM", *call.params.MaterialType)
	assert.Nil(t, call.params.Search)

	assert.Equal(t, "RM", rep.MaterialType)
	require.Len(t, rep.Rows, 2)
	for _, r := range rep.Rows {
		assert.Nil(t, r.LocationCode)
		assert.NotNil(t, r.Status)
		assert.Nil(t, r.TotalPack)
	}
}

func TestAggregate_FGIgnoraTipoYConservaEmpaques(t *testing.T) {
	reports := &fakeReports{rows: []entity.ReportRow{fullRow("Caja", 3)}}
	eng := newEngine(reports)

	rep, err := eng.Aggregate(context.Background(), adminP, report.FamilyFinishedGoods, report.KeyC,
		report.Filters{PlantID: "P2", MaterialType: "RM", Search: "  caja "})
	require.NoError(t, err)

	call := reports.calls[0]
	assert.Equal(t, "report_admin_fg_tab_c", call.procedure)
	assert.Equal(t, "plant-2", call.params.PlantID)
	assert.Nil(t, call.params.MaterialType)
	require.NotNil(t, call.params.Search)
	assert.Equal(t, "caja", *call.params.Search)

	r := rep.Rows[0]
	assert.NotNil(t, r.LocationCode)
	assert.Nil(t, r.Status)
	require.NotNil(t, r.TotalPack)
	assert.Equal(t, "P2", rep.Plant.Code)
}

func TestAggregate_AdminSinPlantaNoLlama(t *testing.T) {
	reports := &fakeReports{}
	eng := newEngine(reports)

	_, err := eng.Aggregate(context.Background(), adminP, report.FamilyGeneral, report.KeyA, report.Filters{})
	assert.ErrorIs(t, err, domain.ErrNoPlantSelected)

	_, err = eng.Aggregate(context.Background(), adminP, report.FamilyGeneral, report.KeyA, report.Filters{PlantID: "P9"})
	assert.ErrorIs(t, err, domain.ErrScopeDenied)

	assert.Empty(t, reports.calls)
}

func TestAggregate_NoAdminSiempreSuPlanta(t *testing.T) {
	reports := &fakeReports{}
	eng := newEngine(reports)

	filters := []report.Filters{
		{MaterialType: "ALL"},
		{MaterialType: "PM", Search: "tapa"},
		{PlantID: "plant-2", MaterialType: "P5"},
	}
	for i, f := range filters {
		_, err := eng.Aggregate(context.Background(), entryP, report.FamilyGeneral, report.KeyD, f)
		require.NoError(t, err)
		require.Len(t, reports.calls, i+1, "una llamada por cambio de filtros")
		assert.Equal(t, "plant-1", reports.calls[i].params.PlantID)
	}
}

func TestAggregate_FalloRemotoDevuelveAlerta(t *testing.T) {
	reports := &fakeReports{err: errors.New("function does not exist")}
	eng := newEngine(reports)

	rep, err := eng.Aggregate(context.Background(), editorP, report.FamilyGeneral, report.KeyA, report.Filters{})
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Contains(t, rep.Alert, "function does not exist")
}

func TestAggregate_Validaciones(t *testing.T) {
	reports := &fakeReports{}
	eng := newEngine(reports)

	_, err := eng.Aggregate(context.Background(), editorP, report.FamilyGeneral, report.KeyA, report.Filters{MaterialType: "XX"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.Aggregate(context.Background(), editorP, report.FamilyGeneral, report.Key("E"), report.Filters{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.Aggregate(context.Background(), nil, report.FamilyGeneral, report.KeyA, report.Filters{})
	assert.ErrorIs(t, err, domain.ErrScopeDenied)

	assert.Empty(t, reports.calls)
}

func TestParseKeyYFamilia(t *testing.T) {
	k, ok := report.ParseKey("c")
	assert.True(t, ok)
	assert.Equal(t, report.KeyC, k)
	assert.Equal(t, report.Kind{Stream: entity.StreamManual, Grain: report.GrainLocation}, k.Kind())

	_, ok = report.ParseKey("Z")
	assert.False(t, ok)

	f, ok := report.ParseFamily("fg")
	assert.True(t, ok)
	assert.Equal(t, report.FamilyFinishedGoods, f)
}
