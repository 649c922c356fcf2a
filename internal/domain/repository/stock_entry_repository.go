package repository

import (
	"context"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// StockEntryRepository puerto del almacén de filas para las cuatro tablas de entradas.
// El flujo decide la tabla; el llamador nunca ve nombres de tabla.
type StockEntryRepository interface {
	// ListByPlant devuelve las entradas de la planta en el flujo dado, más recientes primero.
	// En flujos vinculados al catálogo MaterialName llega vacío (no se hace join).
	ListByPlant(ctx context.Context, stream entity.Stream, plantCode string) ([]entity.StockEntry, error)
	// UpdateReview persiste solo los campos de revisión. ErrNotFound si la fila no existe.
	UpdateReview(ctx context.Context, stream entity.Stream, entryID string, upd entity.ReviewUpdate) error
	// Insert crea entradas nuevas (captura) en una sola transacción.
	Insert(ctx context.Context, stream entity.Stream, entries []entity.StockEntry) error
}
