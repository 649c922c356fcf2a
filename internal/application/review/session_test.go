package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockCount-api/internal/application/feed"
	"github.com/jhoicas/StockCount-api/internal/application/review"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/entrystate"
)

func boolPtr(b bool) *bool { return &b }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga
// ──────────────────────────────────────────────────────────────────────────────

func TestLoad_EditorSoloVeSuPlanta(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal,
		row("e1", "P1", "m1", 10, t0.Add(-3*time.Hour)),
		row("e2", "P1", "m2", 20, t0.Add(-1*time.Hour)),
		row("x1", "P2", "m1", 99, t0),
		row("e3", "P1", "m1", 30, t0.Add(-2*time.Hour)),
		row("x2", "P9", "m3", 99, t0),
	)

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	rows := s.Rows()
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "P1", r.PlantCode)
	}
	assert.Equal(t, []string{"e2", "e3", "e1"}, []string{rows[0].ID, rows[1].ID, rows[2].ID}, "más recientes primero")
}

func TestLoad_ResuelveNombresConIDsDistintos(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal,
		row("e1", "P1", "m1", 1, t0),
		row("e2", "P1", "m1", 1, t0.Add(-time.Minute)),
		row("e3", "P1", "m2", 1, t0.Add(-2*time.Minute)),
		row("e4", "P1", "zz", 1, t0.Add(-3*time.Minute)),
	)

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	require.Len(t, f.materials.calls, 1)
	assert.ElementsMatch(t, []string{"m1", "m2", "zz"}, f.materials.calls[0])

	names := map[string]string{}
	for _, r := range s.Rows() {
		names[r.ID] = r.MaterialName
	}
	assert.Equal(t, "Harina", names["e1"])
	assert.Equal(t, "Harina", names["e2"])
	assert.Equal(t, "Azúcar", names["e3"])
	assert.Equal(t, review.MissingMaterialName, names["e4"])
}

func TestLoad_FalloDeCatalogoUsaMarcador(t *testing.T) {
	f := newFixture()
	f.materials.err = errors.New("timeout")
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 1, t0))

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, review.MissingMaterialName, rows[0].MaterialName)
	assert.Empty(t, s.Feed())
}

func TestLoad_ManualNoConsultaCatalogo(t *testing.T) {
	f := newFixture()
	manual := row("m-1", "P1", "", 4, t0)
	manual.MaterialName = "Tornillos"
	f.entries.add(entity.StreamManual, manual)

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)
	require.NoError(t, s.SelectStream(context.Background(), entity.StreamManual))

	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Tornillos", rows[0].MaterialName)
	assert.Empty(t, f.materials.calls)
}

func TestLoad_FalloRemotoVaciaYAvisa(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 1, t0))

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)
	require.Len(t, s.Rows(), 1)

	f.entries.listErr = errors.New("conexión rechazada")
	require.NoError(t, s.Load(context.Background()))

	assert.Empty(t, s.Rows())
	msgs := s.Feed()
	require.Len(t, msgs, 1)
	assert.Equal(t, feed.KindError, msgs[0].Kind)
	assert.Equal(t, "Error al cargar: conexión rechazada", msgs[0].Text)
}

// ──────────────────────────────────────────────────────────────────────────────
// Planta y flujo
// ──────────────────────────────────────────────────────────────────────────────

func TestAdmin_SinPlantaNoCarga(t *testing.T) {
	f := newFixture()
	s, err := review.NewSession(context.Background(), f.deps, admin(), review.SurfaceGeneral)
	require.NoError(t, err)

	assert.False(t, s.PlantBound())
	assert.ErrorIs(t, s.Load(context.Background()), domain.ErrNoPlantSelected)
	assert.Zero(t, f.entries.lists)

	require.NoError(t, s.SelectPlant(context.Background(), "P2"))
	assert.Equal(t, 1, f.entries.lists)
	assert.ErrorIs(t, s.SelectPlant(context.Background(), "P7"), domain.ErrScopeDenied)
}

func TestEditor_NoPuedeCambiarDePlanta(t *testing.T) {
	f := newFixture()
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SelectPlant(context.Background(), "P2"), domain.ErrPlantSwitchFixed)
	assert.NoError(t, s.SelectPlant(context.Background(), "P1"))
}

func TestNewSession_PerfilSinAlcance(t *testing.T) {
	f := newFixture()
	inactive := editor()
	inactive.Active = false

	_, err := review.NewSession(context.Background(), f.deps, inactive, review.SurfaceGeneral)
	assert.ErrorIs(t, err, domain.ErrScopeDenied)

	_, err = review.NewSession(context.Background(), f.deps, nil, review.SurfaceFinishedGoods)
	assert.ErrorIs(t, err, domain.ErrScopeDenied)
	assert.Zero(t, f.entries.lists)
}

func TestSelectStream_LimpiaFeedYValidaVista(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 5, t0))

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "e1"))
	require.Len(t, s.Feed(), 1)

	require.NoError(t, s.SelectStream(context.Background(), entity.StreamManual))
	assert.Empty(t, s.Feed())
	assert.Empty(t, s.Rows())

	assert.ErrorIs(t, s.SelectStream(context.Background(), entity.StreamFG), domain.ErrStreamNotInView)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición y guardado
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateLocal_CeroPoneCantidadEnCero(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 50, t0))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	_, err = s.UpdateLocal("e1", entrystate.Patch{IsZero: boolPtr(true)})
	require.NoError(t, err)

	rows := s.Rows()
	assert.True(t, rows[0].IsZero)
	assert.True(t, rows[0].CountedQty.IsZero())

	_, err = s.UpdateLocal("nope", entrystate.Patch{IsZero: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntry_SoloLecturaSinEscrituras(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 50, t0))

	s, err := review.NewSession(context.Background(), f.deps, entryRole(), review.SurfaceGeneral)
	require.NoError(t, err)
	assert.False(t, s.Writable())
	before := s.Rows()

	_, err = s.UpdateLocal("e1", entrystate.Patch{IsZero: boolPtr(true), CountedQty: decPtr(3)})
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	assert.ErrorIs(t, s.Save(context.Background(), "e1"), domain.ErrReadOnly)

	assert.Equal(t, before, s.Rows())
	assert.Zero(t, f.entries.updateCount())
	for _, m := range s.Feed() {
		assert.NotEqual(t, feed.KindSuccess, m.Kind)
	}
}

func TestEntry_SoloLecturaTambienEnFG(t *testing.T) {
	f := newFixture()
	s, err := review.NewSession(context.Background(), f.deps, entryRole(), review.SurfaceFinishedGoods)
	require.NoError(t, err)
	assert.False(t, s.Writable())
}

func TestSave_PersisteYRecargaIgual(t *testing.T) {
	f := newFixture()
	fg := row("fg1", "P1", "m3", 40, t0)
	fg.PackCount = decPtr(4)
	fg.BatchNo = "B-77"
	fg.PONo = "PO-1"
	f.entries.add(entity.StreamFG, fg)

	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceFinishedGoods)
	require.NoError(t, err)
	before := s.Rows()[0]

	qa := entity.StatusQA
	tag := "T-NEW"
	_, err = s.UpdateLocal("fg1", entrystate.Patch{CountedQty: decPtr(42), PackCount: decPtr(5), Status: &qa, TagNo: &tag})
	require.NoError(t, err)
	_, err = s.UpdateLocal("fg1", entrystate.Patch{IsCancel: boolPtr(true)})
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "fg1"))
	msgs := s.Feed()
	require.Len(t, msgs, 1)
	assert.Equal(t, feed.KindSuccess, msgs[0].Kind)
	assert.Equal(t, "Guardado: Caja 12 | Tag: T-NEW | 14:30:00", msgs[0].Text)

	require.NoError(t, s.Load(context.Background()))
	after := s.Rows()[0]

	assert.Equal(t, "T-NEW", after.TagNo)
	assert.True(t, after.CountedQty.Equal(decimal.NewFromInt(42)))
	assert.True(t, after.PackCount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, entity.StatusQA, after.Status)
	assert.False(t, after.IsZero)
	assert.True(t, after.IsCancel)
	assert.Equal(t, "u-editor", after.UpdatedBy)

	assert.Equal(t, before.MaterialID, after.MaterialID)
	assert.Equal(t, before.MaterialName, after.MaterialName)
	assert.Equal(t, before.PlantCode, after.PlantCode)
	assert.Equal(t, before.LocationCode, after.LocationCode)
	assert.Equal(t, before.BatchNo, after.BatchNo)
	assert.Equal(t, before.PONo, after.PONo)
}

func TestSave_FalloConservaEdicion(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 10, t0))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	_, err = s.UpdateLocal("e1", entrystate.Patch{CountedQty: decPtr(77)})
	require.NoError(t, err)

	f.entries.saveErr = errors.New("permiso denegado")
	require.NoError(t, s.Save(context.Background(), "e1"))

	assert.True(t, s.Rows()[0].CountedQty.Equal(decimal.NewFromInt(77)))
	msgs := s.Feed()
	require.Len(t, msgs, 1)
	assert.Equal(t, feed.KindError, msgs[0].Kind)
	assert.Equal(t, "Error al guardar: permiso denegado", msgs[0].Text)
}

func TestSave_UnGuardadoPorFilaALaVez(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal,
		row("e1", "P1", "m1", 10, t0),
		row("e2", "P1", "m2", 10, t0.Add(-time.Minute)),
	)
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	f.entries.block = make(chan struct{})
	f.entries.entered = make(chan struct{}, 2)
	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background(), "e1") }()
	<-f.entries.entered

	assert.ErrorIs(t, s.Save(context.Background(), "e1"), domain.ErrSaveInProgress)

	// Las ediciones locales de otras filas siguen disponibles durante el guardado.
	_, err = s.UpdateLocal("e2", entrystate.Patch{CountedQty: decPtr(3)})
	assert.NoError(t, err)

	close(f.entries.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.entries.updateCount())

	require.NoError(t, s.Save(context.Background(), "e1"))
	assert.Equal(t, 2, f.entries.updateCount())
}

func TestSave_ResultadoTardioNoLlegaAlOtroFlujo(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 10, t0))
	f.entries.add(entity.StreamManual, row("n1", "P1", "", 5, t0))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	f.entries.saveErr = errors.New("boom")
	f.entries.block = make(chan struct{})
	f.entries.entered = make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() { done <- s.Save(context.Background(), "e1") }()
	<-f.entries.entered

	require.NoError(t, s.SelectStream(context.Background(), entity.StreamManual))
	close(f.entries.block)
	require.NoError(t, <-done)

	snap := s.Snapshot("")
	assert.Equal(t, entity.StreamManual, snap.Stream)
	assert.Empty(t, snap.Feed, "el resultado del guardado anterior no aparece en el otro flujo")
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "n1", snap.Rows[0].ID)

	// La fila quedó liberada: al volver se puede guardar de nuevo.
	f.entries.block, f.entries.entered, f.entries.saveErr = nil, nil, nil
	require.NoError(t, s.SelectStream(context.Background(), entity.StreamNormal))
	require.NoError(t, s.Save(context.Background(), "e1"))
	msgs := s.Feed()
	require.Len(t, msgs, 1)
	assert.Equal(t, feed.KindSuccess, msgs[0].Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Búsqueda, feed y cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestSearch_SinDistinguirMayusculas(t *testing.T) {
	f := newFixture()
	e1 := row("e1", "P1", "m1", 10, t0)
	e1.TagNo = "ÁREA-Norte"
	f.entries.add(entity.StreamNormal, e1, row("e2", "P1", "m2", 10, t0.Add(-time.Minute)))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)
	lists := f.entries.lists

	got := s.Search("harina")
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	got = s.Search("área-norte")
	require.Len(t, got, 1)

	assert.Len(t, s.Search("  "), 2)
	assert.Empty(t, s.Search("no-existe"))
	assert.Equal(t, lists, f.entries.lists, "la búsqueda no consulta el almacén")
}

func TestFeed_ExpiraConRelojSimulado(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 10, t0))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		require.NoError(t, s.Save(context.Background(), "e1"))
		assert.LessOrEqual(t, len(s.Feed()), 5)
	}
	f.clk.Advance(4500 * time.Millisecond)
	assert.Empty(t, s.Feed())
}

func TestClose_CancelaTemporizadores(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 10, t0))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "e1"))

	s.Close()
	assert.Zero(t, f.clk.Pending())
	assert.NotPanics(t, func() { f.clk.Advance(time.Minute) })
	assert.ErrorIs(t, s.Load(context.Background()), domain.ErrSessionClosed)
}

func TestApplyViewer_CambioDePerfil(t *testing.T) {
	f := newFixture()
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 10, t0), row("e9", "P2", "m1", 10, t0))
	s, err := review.NewSession(context.Background(), f.deps, editor(), review.SurfaceGeneral)
	require.NoError(t, err)

	moved := editor()
	moved.PlantID, moved.PlantCode = "p2", "P2"
	require.NoError(t, s.ApplyViewer(context.Background(), moved))
	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "e9", rows[0].ID)

	demoted := moved
	demoted.Role = entity.RoleEntry
	require.NoError(t, s.ApplyViewer(context.Background(), demoted))
	assert.False(t, s.Writable())

	disabled := *moved
	disabled.Active = false
	assert.ErrorIs(t, s.ApplyViewer(context.Background(), &disabled), domain.ErrScopeDenied)
	assert.True(t, s.Closed())
}

func TestApplyViewer_FalloTransitorioConservaSesion(t *testing.T) {
	f := newFixture()
	plants := &flakyPlants{plants: []entity.Plant{
		{ID: "p1", Code: "P1", Active: true},
		{ID: "p2", Code: "P2", Active: true},
	}}
	f.deps.Resolver = access.NewResolver(plants)
	f.entries.add(entity.StreamNormal, row("e1", "P1", "m1", 10, t0))

	s, err := review.NewSession(context.Background(), f.deps, admin(), review.SurfaceGeneral)
	require.NoError(t, err)
	require.NoError(t, s.SelectPlant(context.Background(), "P1"))
	_, err = s.UpdateLocal("e1", entrystate.Patch{CountedQty: decPtr(42)})
	require.NoError(t, err)

	plants.failNext(1)
	err = s.ApplyViewer(context.Background(), admin())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrScopeDenied)
	assert.False(t, s.Closed())

	require.NoError(t, s.ApplyViewer(context.Background(), admin()))
	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CountedQty.Equal(decimal.NewFromInt(42)), "la edición local se conserva")
	assert.True(t, s.PlantBound())
}
