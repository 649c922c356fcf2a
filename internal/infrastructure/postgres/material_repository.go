package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo catálogo de materiales.
type MaterialRepo struct {
	db Querier
}

// NewMaterialRepository construye el adaptador.
func NewMaterialRepository(db Querier) *MaterialRepo {
	return &MaterialRepo{db: db}
}

// NamesByIDs resuelve nombres con una sola consulta (= ANY($1)).
func (r *MaterialRepo) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT material_id, material_name FROM materials WHERE material_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("material names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan material name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// GetByIDs materiales activos con esos IDs.
func (r *MaterialRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT material_id, material_name, material_type, entry_uom, is_active
		FROM materials WHERE material_id = ANY($1) AND is_active`, ids)
	if err != nil {
		return nil, fmt.Errorf("get materials: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// ListForLocation materiales mapeados a la ubicación. materialType vacío = todos los tipos.
func (r *MaterialRepo) ListForLocation(ctx context.Context, plantCode, locationCode, materialType string) ([]entity.Material, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.material_id, m.material_name, m.material_type, m.entry_uom, m.is_active
		FROM material_location_map mlm
		JOIN materials m ON m.material_id = mlm.material_id
		WHERE mlm.plant_code = $1 AND mlm.location_code = $2 AND m.is_active
		  AND ($3 = '' OR m.material_type = $3)
		ORDER BY m.material_name`, plantCode, locationCode, materialType)
	if err != nil {
		return nil, fmt.Errorf("list materials for location: %w", err)
	}
	defer rows.Close()
	return scanMaterials(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMaterials(rows rowScanner) ([]entity.Material, error) {
	var out []entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.EntryUOM, &m.Active); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
