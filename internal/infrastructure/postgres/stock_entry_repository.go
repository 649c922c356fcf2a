package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

// entryTable tabla física de un flujo y su columna de ID.
type entryTable struct {
	stream entity.Stream
	name   string
	idCol  string
}

var entryTables = map[entity.Stream]entryTable{
	entity.StreamNormal:   {stream: entity.StreamNormal, name: "stock_entries", idCol: "stock_entry_id"},
	entity.StreamManual:   {stream: entity.StreamManual, name: "stock_entries_manual", idCol: "manual_entry_id"},
	entity.StreamFG:       {stream: entity.StreamFG, name: "stock_entries_fg", idCol: "fg_entry_id"},
	entity.StreamFGManual: {stream: entity.StreamFGManual, name: "stock_entries_fg_manual", idCol: "fg_manual_entry_id"},
}

func tableFor(stream entity.Stream) (entryTable, error) {
	t, ok := entryTables[stream]
	if !ok {
		return entryTable{}, fmt.Errorf("%w: flujo %q", domain.ErrInvalidInput, stream)
	}
	return t, nil
}

// dataColumns columnas escribibles en la captura, en orden.
func (t entryTable) dataColumns() []string {
	cols := []string{t.idCol, "entry_date", "plant_code", "location_code"}
	if t.stream.CatalogLinked() {
		cols = append(cols, "material_id")
	} else {
		cols = append(cols, "material_name")
	}
	cols = append(cols, "material_type", "entry_uom", "tag_no", "counted_qty", "status", "is_zero", "is_cancel")
	if t.stream == entity.StreamManual {
		cols = append(cols, "remarks")
	}
	if t.stream.FinishedGoods() {
		cols = append(cols, "batch_no", "po_no", "pack_count")
	}
	return append(cols, "created_by", "created_at")
}

// selectColumns agrega la auditoría de revisión a las columnas de captura.
func (t entryTable) selectColumns() []string {
	return append(t.dataColumns(), "updated_by", "updated_at")
}

// entryScan destinos intermedios para columnas nulas.
type entryScan struct {
	material  *string
	mtype     *string
	uom       *string
	tag       *string
	remarks   *string
	batch     *string
	po        *string
	pack      decimal.NullDecimal
	createdBy *string
	updatedBy *string
}

func (t entryTable) scanTargets(e *entity.StockEntry, s *entryScan) []any {
	dst := []any{&e.ID, &e.EntryDate, &e.PlantCode, &e.LocationCode, &s.material,
		&s.mtype, &s.uom, &s.tag, &e.CountedQty, &e.Status, &e.IsZero, &e.IsCancel}
	if t.stream == entity.StreamManual {
		dst = append(dst, &s.remarks)
	}
	if t.stream.FinishedGoods() {
		dst = append(dst, &s.batch, &s.po, &s.pack)
	}
	return append(dst, &s.createdBy, &e.CreatedAt, &s.updatedBy, &e.UpdatedAt)
}

func (t entryTable) finish(e *entity.StockEntry, s *entryScan) {
	e.Stream = t.stream
	if t.stream.CatalogLinked() {
		e.MaterialID = derefString(s.material)
	} else {
		e.MaterialName = derefString(s.material)
	}
	e.MaterialType = derefString(s.mtype)
	e.EntryUOM = derefString(s.uom)
	e.TagNo = derefString(s.tag)
	e.Remarks = derefString(s.remarks)
	e.BatchNo = derefString(s.batch)
	e.PONo = derefString(s.po)
	e.CreatedBy = derefString(s.createdBy)
	e.UpdatedBy = derefString(s.updatedBy)
	if t.stream.FinishedGoods() {
		pack := decimal.Zero
		if s.pack.Valid {
			pack = s.pack.Decimal
		}
		e.PackCount = &pack
	}
}

func (t entryTable) values(e entity.StockEntry) []any {
	material := e.MaterialName
	if t.stream.CatalogLinked() {
		material = e.MaterialID
	}
	vals := []any{e.ID, e.EntryDate, e.PlantCode, e.LocationCode, material,
		nullIfEmpty(e.MaterialType), nullIfEmpty(e.EntryUOM), nullIfEmpty(e.TagNo),
		e.CountedQty, string(e.Status), e.IsZero, e.IsCancel}
	if t.stream == entity.StreamManual {
		vals = append(vals, nullIfEmpty(e.Remarks))
	}
	if t.stream.FinishedGoods() {
		pack := decimal.Zero
		if e.PackCount != nil {
			pack = *e.PackCount
		}
		vals = append(vals, nullIfEmpty(e.BatchNo), nullIfEmpty(e.PONo), pack)
	}
	return append(vals, nullIfEmpty(e.CreatedBy), e.CreatedAt)
}

// StockEntryRepo implementación de StockEntryRepository sobre las cuatro tablas de entradas.
type StockEntryRepo struct {
	db Querier
}

// NewStockEntryRepository construye el adaptador.
func NewStockEntryRepository(db Querier) *StockEntryRepo {
	return &StockEntryRepo{db: db}
}

// ListByPlant lee las entradas de la planta sin joins; el nombre de material de los flujos
// vinculados al catálogo lo resuelve la sesión de revisión.
func (r *StockEntryRepo) ListByPlant(ctx context.Context, stream entity.Stream, plantCode string) ([]entity.StockEntry, error) {
	t, err := tableFor(stream)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE plant_code = $1 ORDER BY created_at DESC`,
		strings.Join(t.selectColumns(), ", "), t.name)

	rows, err := r.db.Query(ctx, query, plantCode)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		var s entryScan
		if err := rows.Scan(t.scanTargets(&e, &s)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		t.finish(&e, &s)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return out, nil
}

// UpdateReview escribe solo los campos de revisión. pack_count únicamente en tablas FG.
func (r *StockEntryRepo) UpdateReview(ctx context.Context, stream entity.Stream, entryID string, upd entity.ReviewUpdate) error {
	t, err := tableFor(stream)
	if err != nil {
		return err
	}
	sets := []string{"tag_no = $2", "counted_qty = $3", "status = $4", "is_zero = $5",
		"is_cancel = $6", "updated_by = $7", "updated_at = $8"}
	args := []any{entryID, nullIfEmpty(upd.TagNo), upd.CountedQty, string(upd.Status),
		upd.IsZero, upd.IsCancel, nullIfEmpty(upd.UpdatedBy), upd.UpdatedAt}
	if stream.FinishedGoods() {
		pack := decimal.Zero
		if upd.PackCount != nil {
			pack = *upd.PackCount
		}
		sets = append(sets, "pack_count = $9")
		args = append(args, pack)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`, t.name, strings.Join(sets, ", "), t.idCol)

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError("update "+t.name, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Insert crea las entradas en una transacción usando un batch.
func (r *StockEntryRepo) Insert(ctx context.Context, stream entity.Stream, entries []entity.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	t, err := tableFor(stream)
	if err != nil {
		return err
	}
	cols := t.dataColumns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		t.name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now()
			}
			batch.Queue(query, t.values(e)...)
		}
		br := tx.SendBatch(ctx, batch)
		for range entries {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return mapWriteError("insert "+t.name, err)
			}
		}
		return br.Close()
	})
}
