package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

var (
	_ repository.PlantRepository    = (*PlantRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// PlantRepo plantas activas.
type PlantRepo struct {
	db Querier
}

// NewPlantRepository construye el adaptador.
func NewPlantRepository(db Querier) *PlantRepo {
	return &PlantRepo{db: db}
}

// ListActive plantas con active_flag, por código.
func (r *PlantRepo) ListActive(ctx context.Context) ([]entity.Plant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT plant_id::text, plant_code, COALESCE(plant_name, ''), active_flag
		FROM plants WHERE active_flag ORDER BY plant_code`)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	var out []entity.Plant
	for rows.Next() {
		var p entity.Plant
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Active); err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LocationRepo ubicaciones por planta.
type LocationRepo struct {
	db Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(db Querier) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `location_id::text, location_code, plant_id::text, plant_code, active_flag`

// ListActiveByPlant ubicaciones activas de la planta, por código.
func (r *LocationRepo) ListActiveByPlant(ctx context.Context, plantCode string) ([]entity.Location, error) {
	rows, err := r.db.Query(ctx, `SELECT `+locationColumns+`
		FROM locations WHERE plant_code = $1 AND active_flag ORDER BY location_code`, plantCode)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Code, &l.PlantID, &l.PlantCode, &l.Active); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetByCode ubicación por planta y código (activa o no). nil, nil si no existe.
func (r *LocationRepo) GetByCode(ctx context.Context, plantCode, locationCode string) (*entity.Location, error) {
	var l entity.Location
	err := r.db.QueryRow(ctx, `SELECT `+locationColumns+`
		FROM locations WHERE plant_code = $1 AND location_code = $2`, plantCode, locationCode).
		Scan(&l.ID, &l.Code, &l.PlantID, &l.PlantCode, &l.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}
