package repository

import (
	"context"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// MaterialRepository consultas de solo lectura sobre el catálogo de materiales.
type MaterialRepository interface {
	// NamesByIDs resuelve nombres para un conjunto de IDs. Los IDs desconocidos no aparecen en el mapa.
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	// GetByIDs devuelve los materiales activos con esos IDs.
	GetByIDs(ctx context.Context, ids []string) ([]entity.Material, error)
	// ListForLocation materiales mapeados a planta+ubicación (material_location_map), filtrados por tipo.
	ListForLocation(ctx context.Context, plantCode, locationCode, materialType string) ([]entity.Material, error)
}
