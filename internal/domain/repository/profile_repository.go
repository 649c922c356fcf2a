package repository

import (
	"context"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// ProfileRepository perfiles de usuario (user_profile + plants).
type ProfileRepository interface {
	// GetByUserID devuelve nil, nil si el usuario no tiene perfil aprovisionado.
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
	// ListAccounts lista todos los usuarios registrados, con o sin perfil, ordenados por email.
	ListAccounts(ctx context.Context) ([]entity.UserAccount, error)
	// Upsert crea o reemplaza el perfil. Devuelve domain.ErrNotFound si el usuario no está registrado.
	Upsert(ctx context.Context, a entity.ProfileAssignment) error
}
