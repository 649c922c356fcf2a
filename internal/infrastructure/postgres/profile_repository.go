package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo perfiles de usuario (app_users + user_profile + plants).
type ProfileRepo struct {
	db Querier
}

// NewProfileRepository construye el adaptador.
func NewProfileRepository(db Querier) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByUserID nil, nil si el usuario no está aprovisionado.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*entity.Profile, error) {
	var (
		p         entity.Profile
		role      string
		plantID   *string
		plantCode *string
		plantName *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT up.user_id::text, up.role, up.plant_id::text, p.plant_code, p.plant_name, up.active_flag
		FROM user_profile up
		LEFT JOIN plants p ON p.plant_id = up.plant_id
		WHERE up.user_id::text = $1`, userID).
		Scan(&p.UserID, &role, &plantID, &plantCode, &plantName, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Role = entity.Role(role)
	p.PlantID = derefString(plantID)
	p.PlantCode = derefString(plantCode)
	p.PlantName = derefString(plantName)
	return &p, nil
}

// ListAccounts une app_users con su perfil; los usuarios sin perfil salen con Profile nil.
func (r *ProfileRepo) ListAccounts(ctx context.Context) ([]entity.UserAccount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.user_id::text, u.email, up.role, up.plant_id::text, p.plant_code, p.plant_name, up.active_flag
		FROM app_users u
		LEFT JOIN user_profile up ON up.user_id = u.user_id
		LEFT JOIN plants p ON p.plant_id = up.plant_id
		ORDER BY u.email`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var list []entity.UserAccount
	for rows.Next() {
		var (
			a         entity.UserAccount
			role      *string
			plantID   *string
			plantCode *string
			plantName *string
			active    *bool
		)
		if err := rows.Scan(&a.UserID, &a.Email, &role, &plantID, &plantCode, &plantName, &active); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if role != nil {
			a.Profile = &entity.Profile{
				UserID:    a.UserID,
				Role:      entity.Role(*role),
				PlantID:   derefString(plantID),
				PlantCode: derefString(plantCode),
				PlantName: derefString(plantName),
				Active:    active != nil && *active,
			}
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Upsert inserta o reemplaza el perfil solo si el usuario existe en app_users.
func (r *ProfileRepo) Upsert(ctx context.Context, a entity.ProfileAssignment) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_profile (user_id, role, plant_id, active_flag)
		SELECT u.user_id, $2, $3::uuid, $4
		FROM app_users u
		WHERE u.user_id::text = $1
		ON CONFLICT (user_id) DO UPDATE
		SET role = EXCLUDED.role, plant_id = EXCLUDED.plant_id, active_flag = EXCLUDED.active_flag`,
		a.UserID, string(a.Role), nullIfEmpty(a.PlantID), a.Active)
	if err != nil {
		return mapWriteError("upsert profile", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
