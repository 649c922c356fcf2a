// Package access deriva, a partir del perfil, qué plantas puede leer o modificar un usuario.
package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

// PlantSelectionMode indica si la planta está fijada por el perfil o la elige el usuario.
type PlantSelectionMode string

const (
	ModeFixed      PlantSelectionMode = "FIXED"
	ModeSelectable PlantSelectionMode = "SELECTABLE"
)

// Surface superficie desde la que se pide el alcance. La escritura solo aplica a revisión.
type Surface string

const (
	SurfaceReview Surface = "REVIEW"
	SurfaceReport Surface = "REPORT"
)

// Scope resultado del resolver. El valor cero es el alcance vacío: el llamador debe rechazar todo.
type Scope struct {
	Writable      bool
	Mode          PlantSelectionMode
	AllowedPlants []entity.Plant
}

// Empty true cuando no hay ninguna planta permitida.
func (s Scope) Empty() bool { return len(s.AllowedPlants) == 0 }

// Allows busca la planta por código dentro del alcance.
func (s Scope) Allows(plantCode string) (entity.Plant, bool) {
	for _, p := range s.AllowedPlants {
		if p.Code == plantCode {
			return p, true
		}
	}
	return entity.Plant{}, false
}

// AllowsID busca la planta por ID dentro del alcance.
func (s Scope) AllowsID(plantID string) (entity.Plant, bool) {
	for _, p := range s.AllowedPlants {
		if p.ID == plantID {
			return p, true
		}
	}
	return entity.Plant{}, false
}

// FixedPlant devuelve la planta única de un alcance FIXED.
func (s Scope) FixedPlant() (entity.Plant, bool) {
	if s.Mode != ModeFixed || len(s.AllowedPlants) != 1 {
		return entity.Plant{}, false
	}
	return s.AllowedPlants[0], true
}

// ScopeResolver lo implementa Resolver; los casos de uso dependen de esta interfaz.
type ScopeResolver interface {
	Resolve(ctx context.Context, profile *entity.Profile, surface Surface) (Scope, error)
}

var _ ScopeResolver = (*Resolver)(nil)

// Resolver calcula el alcance de un perfil. Para ADMIN consulta las plantas activas.
type Resolver struct {
	plants repository.PlantRepository
}

// NewResolver construye el resolver.
func NewResolver(plants repository.PlantRepository) *Resolver {
	return &Resolver{plants: plants}
}

// Resolve deriva el alcance. Perfil ausente, inactivo, con rol desconocido o (para roles fijos)
// sin planta propia produce un alcance vacío y error nil. Solo devuelve error si falla la
// consulta de plantas; ese error envuelve domain.ErrUnavailable.
func (r *Resolver) Resolve(ctx context.Context, profile *entity.Profile, surface Surface) (Scope, error) {
	if profile == nil || !profile.Active || !profile.Role.Valid() {
		return Scope{}, nil
	}

	writable := true
	if surface == SurfaceReview && profile.Role == entity.RoleEntry {
		writable = false
	}

	switch profile.Role {
	case entity.RoleEditor, entity.RoleEntry:
		if profile.PlantCode == "" {
			return Scope{}, nil
		}
		return Scope{
			Writable: writable,
			Mode:     ModeFixed,
			AllowedPlants: []entity.Plant{{
				ID:     profile.PlantID,
				Code:   profile.PlantCode,
				Name:   profile.PlantName,
				Active: true,
			}},
		}, nil
	case entity.RoleAdmin:
		plants, err := r.plants.ListActive(ctx)
		if err != nil {
			return Scope{}, fmt.Errorf("access: listar plantas activas: %w: %w", domain.ErrUnavailable, err)
		}
		allowed := make([]entity.Plant, 0, len(plants))
		for _, p := range plants {
			if p.Active {
				allowed = append(allowed, p)
			}
		}
		if len(allowed) == 0 {
			return Scope{}, nil
		}
		return Scope{Writable: writable, Mode: ModeSelectable, AllowedPlants: allowed}, nil
	}
	return Scope{}, nil
}
