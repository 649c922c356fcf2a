package repository

import (
	"context"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// AggregateParams parámetros de los procedimientos de agregación (p_plant_id, p_material_type, p_search).
// Los punteros nil se envían como NULL.
type AggregateParams struct {
	PlantID      string
	MaterialType *string
	Search       *string
}

// ReportRepository ejecuta los procedimientos remotos de agregación. La suma y el agrupamiento
// los hace la base de datos; este puerto solo transporta la petición y las filas.
type ReportRepository interface {
	Aggregate(ctx context.Context, procedure string, params AggregateParams) ([]entity.ReportRow, error)
}
