// Package entrystate aplica las reglas de edición sobre la proyección mutable de una entrada:
// cantidad, empaques, estado, cero y anulación.
package entrystate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// Field nombre de un campo editable (coincide con la columna en la base de datos).
type Field string

const (
	FieldTagNo      Field = "tag_no"
	FieldCountedQty Field = "counted_qty"
	FieldPackCount  Field = "pack_count"
	FieldStatus     Field = "status"
	FieldIsZero     Field = "is_zero"
	FieldIsCancel   Field = "is_cancel"
)

// Patch edición local. Solo se aplican los campos no nil.
type Patch struct {
	TagNo      *string
	CountedQty *decimal.Decimal
	PackCount  *decimal.Decimal
	Status     *entity.EntryStatus
	IsZero     *bool
	IsCancel   *bool
}

// Empty true si el patch no trae ningún campo.
func (p Patch) Empty() bool {
	return p.TagNo == nil && p.CountedQty == nil && p.PackCount == nil &&
		p.Status == nil && p.IsZero == nil && p.IsCancel == nil
}

// Outcome campos aplicados y campos de cantidad rechazados por estar bloqueados.
type Outcome struct {
	Applied  []Field
	Rejected []Field
}

// QuantityLocked true si la entrada no admite edición directa de cantidades.
func QuantityLocked(e *entity.StockEntry) bool {
	return e.IsZero || e.IsCancel
}

// Apply valida y aplica el patch sobre e. Si la validación falla no se modifica nada.
//
// Orden: banderas (anulación, cero) antes que cantidades, para que desmarcar cero y escribir
// una cantidad en el mismo patch funcione. Las cantidades bloqueadas se ignoran y se
// reportan en Outcome.Rejected; el resto del patch se aplica.
func Apply(e *entity.StockEntry, p Patch) (Outcome, error) {
	if err := validate(e, p); err != nil {
		return Outcome{}, err
	}

	var out Outcome

	if p.IsCancel != nil {
		e.IsCancel = *p.IsCancel
		out.Applied = append(out.Applied, FieldIsCancel)
	}
	if p.IsZero != nil {
		// Desmarcar cero no restaura el valor anterior: queda en 0 hasta que se escriba otro.
		e.IsZero = *p.IsZero
		out.Applied = append(out.Applied, FieldIsZero)
	}
	if p.Status != nil {
		e.Status = *p.Status
		out.Applied = append(out.Applied, FieldStatus)
	}
	if p.TagNo != nil {
		e.TagNo = *p.TagNo
		out.Applied = append(out.Applied, FieldTagNo)
	}

	if p.CountedQty != nil {
		if QuantityLocked(e) {
			out.Rejected = append(out.Rejected, FieldCountedQty)
		} else {
			e.CountedQty = *p.CountedQty
			out.Applied = append(out.Applied, FieldCountedQty)
		}
	}
	if p.PackCount != nil {
		if QuantityLocked(e) {
			out.Rejected = append(out.Rejected, FieldPackCount)
		} else {
			v := *p.PackCount
			e.PackCount = &v
			out.Applied = append(out.Applied, FieldPackCount)
		}
	}

	normalize(e)
	return out, nil
}

// normalize restablece el invariante: cero implica cantidades en 0.
// Se aplica aunque la entrada esté anulada; la anulación solo congela ediciones directas.
func normalize(e *entity.StockEntry) {
	if !e.IsZero {
		return
	}
	e.CountedQty = decimal.Zero
	if e.Stream.FinishedGoods() {
		zero := decimal.Zero
		e.PackCount = &zero
	}
}

// Normalize aplica el invariante de cero a una entrada recién cargada.
func Normalize(e *entity.StockEntry) { normalize(e) }

func validate(e *entity.StockEntry, p Patch) error {
	if p.Status != nil && !p.Status.Valid() {
		return domain.ErrInvalidInput
	}
	if p.CountedQty != nil && p.CountedQty.IsNegative() {
		return domain.ErrInvalidInput
	}
	if p.PackCount != nil {
		if !e.Stream.FinishedGoods() || p.PackCount.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// BuildReviewUpdate arma el conjunto de campos que persiste un guardado de revisión.
// La cantidad se fuerza a 0 si la entrada está en cero.
func BuildReviewUpdate(e entity.StockEntry, userID string, now time.Time) entity.ReviewUpdate {
	upd := entity.ReviewUpdate{
		TagNo:      e.TagNo,
		CountedQty: e.CountedQty,
		Status:     e.Status,
		IsZero:     e.IsZero,
		IsCancel:   e.IsCancel,
		UpdatedBy:  userID,
		UpdatedAt:  now,
	}
	if upd.Status == "" {
		upd.Status = entity.StatusNormal
	}
	if e.IsZero {
		upd.CountedQty = decimal.Zero
	}
	if e.Stream.FinishedGoods() {
		pack := decimal.Zero
		if e.PackCount != nil && !e.IsZero {
			pack = *e.PackCount
		}
		upd.PackCount = &pack
	}
	return upd
}
