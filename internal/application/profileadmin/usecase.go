// Package profileadmin permite a un ADMIN asignar rol, planta y estado a los usuarios registrados.
// El resto del servicio solo lee los perfiles.
package profileadmin

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

// UseCase administración de perfiles.
type UseCase struct {
	profiles repository.ProfileRepository
	plants   repository.PlantRepository
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(profiles repository.ProfileRepository, plants repository.PlantRepository, log zerolog.Logger) *UseCase {
	return &UseCase{profiles: profiles, plants: plants, log: log}
}

// List usuarios con su perfil, ordenados por email. Solo ADMIN.
func (uc *UseCase) List(ctx context.Context, viewer *entity.Profile) ([]dto.UserProfileResponse, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	accounts, err := uc.profiles.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("profileadmin: listar usuarios: %w: %w", domain.ErrUnavailable, err)
	}
	out := make([]dto.UserProfileResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toResponse(a))
	}
	return out, nil
}

// Save crea o reemplaza el perfil de userID y devuelve el usuario actualizado.
// La planta, si se indica, debe estar activa. Un ADMIN no puede quitarse su propio rol ni desactivarse.
func (uc *UseCase) Save(ctx context.Context, viewer *entity.Profile, userID string, in dto.UpsertProfileRequest) (*dto.UserProfileResponse, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	a := entity.ProfileAssignment{
		UserID:  strings.TrimSpace(userID),
		Role:    entity.Role(strings.ToUpper(strings.TrimSpace(in.Role))),
		PlantID: strings.TrimSpace(in.PlantID),
		Active:  in.Active == nil || *in.Active,
	}
	if a.UserID == "" || !a.Role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if a.UserID == viewer.UserID && (a.Role != entity.RoleAdmin || !a.Active) {
		return nil, fmt.Errorf("%w: un ADMIN no puede quitarse su propio acceso", domain.ErrConflict)
	}
	if a.PlantID != "" {
		if err := uc.checkPlant(ctx, a.PlantID); err != nil {
			return nil, err
		}
	}

	if err := uc.profiles.Upsert(ctx, a); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", a.UserID).Str("role", string(a.Role)).
		Str("plant_id", a.PlantID).Bool("active", a.Active).Str("by", viewer.UserID).Msg("perfil actualizado")

	accounts, err := uc.profiles.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("profileadmin: releer usuario: %w: %w", domain.ErrUnavailable, err)
	}
	for _, acc := range accounts {
		if acc.UserID == a.UserID {
			res := toResponse(acc)
			return &res, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (uc *UseCase) checkPlant(ctx context.Context, plantID string) error {
	plants, err := uc.plants.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("profileadmin: listar plantas: %w: %w", domain.ErrUnavailable, err)
	}
	for _, p := range plants {
		if p.ID == plantID && p.Active {
			return nil
		}
	}
	return fmt.Errorf("%w: planta inexistente o inactiva", domain.ErrInvalidInput)
}

func requireAdmin(viewer *entity.Profile) error {
	if viewer == nil || !viewer.Active || !viewer.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func toResponse(a entity.UserAccount) dto.UserProfileResponse {
	res := dto.UserProfileResponse{UserID: a.UserID, Email: a.Email}
	if p := a.Profile; p != nil {
		res.HasProfile = true
		res.Role = string(p.Role)
		res.PlantID = p.PlantID
		res.PlantCode = p.PlantCode
		res.PlantName = p.PlantName
		res.Active = p.Active
	}
	return res
}
