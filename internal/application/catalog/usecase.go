// Package catalog expone los datos de referencia (alcance, plantas, ubicaciones, materiales)
// filtrados por el alcance del usuario.
package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

// UseCase consultas de referencia.
type UseCase struct {
	resolver  access.ScopeResolver
	locations repository.LocationRepository
	materials repository.MaterialRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(resolver access.ScopeResolver, locations repository.LocationRepository, materials repository.MaterialRepository) *UseCase {
	return &UseCase{resolver: resolver, locations: locations, materials: materials}
}

// Scope alcance del usuario en la superficie pedida.
func (uc *UseCase) Scope(ctx context.Context, viewer *entity.Profile, surface access.Surface) (*dto.ScopeResponse, error) {
	scope, err := uc.resolver.Resolve(ctx, viewer, surface)
	if err != nil {
		return nil, err
	}
	if scope.Empty() {
		return nil, domain.ErrScopeDenied
	}
	return &dto.ScopeResponse{
		UserID:        viewer.UserID,
		Role:          string(viewer.Role),
		Surface:       string(surface),
		Writable:      scope.Writable,
		Mode:          string(scope.Mode),
		AllowedPlants: ToPlantResponses(scope.AllowedPlants),
	}, nil
}

// Locations ubicaciones activas de una planta del alcance.
func (uc *UseCase) Locations(ctx context.Context, viewer *entity.Profile, plantCode string) ([]dto.LocationResponse, error) {
	plant, err := uc.allowedPlant(ctx, viewer, plantCode)
	if err != nil {
		return nil, err
	}
	locs, err := uc.locations.ListActiveByPlant(ctx, plant.Code)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationResponse{ID: l.ID, Code: l.Code, PlantCode: l.PlantCode})
	}
	return out, nil
}

// Materials materiales mapeados a la ubicación de una planta del alcance, filtrados por tipo
// (vacío o ALL = todos).
func (uc *UseCase) Materials(ctx context.Context, viewer *entity.Profile, q dto.MaterialQuery) ([]dto.MaterialResponse, error) {
	plantCode := q.PlantCode
	if plantCode == "" && viewer != nil {
		plantCode = viewer.PlantCode
	}
	plant, err := uc.allowedPlant(ctx, viewer, plantCode)
	if err != nil {
		return nil, err
	}
	loc := strings.TrimSpace(q.LocationCode)
	if loc == "" {
		return nil, domain.ErrInvalidInput
	}
	mt := strings.ToUpper(strings.TrimSpace(q.MaterialType))
	if mt == entity.MaterialTypeAll {
		mt = ""
	}
	if mt != "" && !entity.ValidMaterialType(mt) {
		return nil, domain.ErrInvalidInput
	}
	mats, err := uc.materials.ListForLocation(ctx, plant.Code, loc, mt)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(mats))
	for _, m := range mats {
		out = append(out, dto.MaterialResponse{ID: m.ID, Name: m.Name, Type: m.Type, EntryUOM: m.EntryUOM})
	}
	return out, nil
}

func (uc *UseCase) allowedPlant(ctx context.Context, viewer *entity.Profile, plantCode string) (entity.Plant, error) {
	scope, err := uc.resolver.Resolve(ctx, viewer, access.SurfaceReport)
	if err != nil {
		return entity.Plant{}, err
	}
	if scope.Empty() {
		return entity.Plant{}, domain.ErrScopeDenied
	}
	plantCode = strings.TrimSpace(plantCode)
	if plantCode == "" {
		return entity.Plant{}, domain.ErrNoPlantSelected
	}
	p, ok := scope.Allows(plantCode)
	if !ok {
		return entity.Plant{}, domain.ErrScopeDenied
	}
	return p, nil
}

// ToPlantResponses mapea plantas al DTO.
func ToPlantResponses(plants []entity.Plant) []dto.PlantResponse {
	out := make([]dto.PlantResponse, 0, len(plants))
	for _, p := range plants {
		out = append(out, dto.PlantResponse{ID: p.ID, Code: p.Code, Name: p.Name})
	}
	return out
}
