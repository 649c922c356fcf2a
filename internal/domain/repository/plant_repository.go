package repository

import (
	"context"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// PlantRepository datos de referencia de plantas.
type PlantRepository interface {
	// ListActive plantas con active_flag, ordenadas por código.
	ListActive(ctx context.Context) ([]entity.Plant, error)
}

// LocationRepository datos de referencia de ubicaciones.
type LocationRepository interface {
	ListActiveByPlant(ctx context.Context, plantCode string) ([]entity.Location, error)
	// GetByCode devuelve nil, nil si no existe.
	GetByCode(ctx context.Context, plantCode, locationCode string) (*entity.Location, error)
}
