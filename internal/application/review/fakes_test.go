package review_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockCount-api/internal/application/review"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/pkg/clock"
)

// memEntries almacén en memoria de las cuatro tablas.
type memEntries struct {
	mu      sync.Mutex
	rows    map[entity.Stream][]entity.StockEntry
	listErr error
	saveErr error
	lists   int
	updates []entity.ReviewUpdate
	block   chan struct{} // si no es nil, UpdateReview espera a que se cierre
	entered chan struct{}
}

func newMemEntries() *memEntries {
	return &memEntries{rows: map[entity.Stream][]entity.StockEntry{}}
}

func (m *memEntries) add(stream entity.Stream, rows ...entity.StockEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		r.Stream = stream
		m.rows[stream] = append(m.rows[stream], r)
	}
}

func (m *memEntries) ListByPlant(_ context.Context, stream entity.Stream, plantCode string) ([]entity.StockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	// Devuelve también filas de otras plantas: la sesión debe descartarlas.
	out := make([]entity.StockEntry, 0, len(m.rows[stream]))
	for _, r := range m.rows[stream] {
		c := r.Clone()
		if stream.CatalogLinked() {
			c.MaterialName = ""
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memEntries) UpdateReview(_ context.Context, stream entity.Stream, entryID string, upd entity.ReviewUpdate) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.updates = append(m.updates, upd)
	for i, r := range m.rows[stream] {
		if r.ID != entryID {
			continue
		}
		r.TagNo = upd.TagNo
		r.CountedQty = upd.CountedQty
		if upd.PackCount != nil {
			p := *upd.PackCount
			r.PackCount = &p
		}
		r.Status = upd.Status
		r.IsZero = upd.IsZero
		r.IsCancel = upd.IsCancel
		r.UpdatedBy = upd.UpdatedBy
		at := upd.UpdatedAt
		r.UpdatedAt = &at
		m.rows[stream][i] = r
		return nil
	}
	return domain.ErrNotFound
}

func (m *memEntries) Insert(_ context.Context, stream entity.Stream, entries []entity.StockEntry) error {
	m.add(stream, entries...)
	return nil
}

func (m *memEntries) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

type memMaterials struct {
	names map[string]string
	err   error
	calls [][]string
}

func (m *memMaterials) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	m.calls = append(m.calls, append([]string(nil), ids...))
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]string{}
	for _, id := range ids {
		if n, ok := m.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (m *memMaterials) GetByIDs(context.Context, []string) ([]entity.Material, error) {
	return nil, nil
}

func (m *memMaterials) ListForLocation(context.Context, string, string, string) ([]entity.Material, error) {
	return nil, nil
}

type memPlants struct{ plants []entity.Plant }

func (m memPlants) ListActive(context.Context) ([]entity.Plant, error) { return m.plants, nil }

// flakyPlants falla las próximas `fails` consultas y luego responde normalmente.
type flakyPlants struct {
	mu     sync.Mutex
	fails  int
	plants []entity.Plant
}

func (f *flakyPlants) failNext(n int) {
	f.mu.Lock()
	f.fails = n
	f.mu.Unlock()
}

func (f *flakyPlants) ListActive(context.Context) ([]entity.Plant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("conexión reiniciada por el servidor")
	}
	return f.plants, nil
}

type fixture struct {
	entries   *memEntries
	materials *memMaterials
	clk       *clock.Manual
	deps      review.Deps
}

var t0 = time.Date(2026, 6, 10, 14, 30, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		entries:   newMemEntries(),
		materials: &memMaterials{names: map[string]string{"m1": "Harina", "m2": "Azúcar", "m3": "Caja 12"}},
		clk:       clock.NewManual(t0),
	}
	f.deps = review.Deps{
		Entries:   f.entries,
		Materials: f.materials,
		Resolver: access.NewResolver(memPlants{plants: []entity.Plant{
			{ID: "p1", Code: "P1", Active: true},
			{ID: "p2", Code: "P2", Active: true},
		}}),
		Clock:    f.clk,
		Logger:   zerolog.Nop(),
		FeedTTL:  4500 * time.Millisecond,
		FeedSize: 5,
	}
	return f
}

func editor() *entity.Profile {
	return &entity.Profile{UserID: "u-editor", Role: entity.RoleEditor, PlantID: "p1", PlantCode: "P1", Active: true}
}

func entryRole() *entity.Profile {
	return &entity.Profile{UserID: "u-entry", Role: entity.RoleEntry, PlantID: "p1", PlantCode: "P1", Active: true}
}

func admin() *entity.Profile {
	return &entity.Profile{UserID: "u-admin", Role: entity.RoleAdmin, Active: true}
}

func row(id, plant, material string, qty int64, created time.Time) entity.StockEntry {
	return entity.StockEntry{
		ID:           id,
		MaterialID:   material,
		MaterialName: "no debe usarse",
		MaterialType: "RM",
		EntryUOM:     "KG",
		CountedQty:   decimal.NewFromInt(qty),
		Status:       entity.StatusNormal,
		TagNo:        "T-" + id,
		PlantCode:    plant,
		LocationCode: "L1",
		CreatedAt:    created,
	}
}
