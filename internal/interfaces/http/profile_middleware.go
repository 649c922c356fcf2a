package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// profileLoader contrato mínimo para leer el perfil; lo implementa el repositorio de perfiles.
type profileLoader interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Profile, error)
}

// RequireProfile carga el perfil del usuario en cada petición. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized        → no hay user_id en el contexto.
//   - 403 Forbidden           → perfil no aprovisionado, inactivo o con rol desconocido.
//   - 503 Service Unavailable → fallo al consultar el perfil.
func RequireProfile(profiles profileLoader, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}

		profile, err := profiles.GetByUserID(c.UserContext(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("cargar perfil")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PROFILE_CHECK_FAILED",
				Message: "no se pudo verificar el perfil, intente más tarde",
			})
		}
		if profile == nil || !profile.Active || !profile.Role.Valid() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "PROFILE_DENIED",
				Message: "el usuario no tiene un perfil activo",
			})
		}

		c.Locals(LocalProfile, profile)
		return c.Next()
	}
}

// GetProfile devuelve el perfil cargado por RequireProfile.
func GetProfile(c *fiber.Ctx) *entity.Profile {
	p, _ := c.Locals(LocalProfile).(*entity.Profile)
	return p
}

// RequireRole deja pasar solo los perfiles con alguno de los roles indicados. Debe usarse DESPUÉS
// de RequireProfile.
//
// Comportamiento:
//   - 401 Unauthorized → no hay perfil en el contexto.
//   - 403 Forbidden    → el rol del perfil no está permitido.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile := GetProfile(c)
		if profile == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "perfil no encontrado en el contexto",
			})
		}
		for _, r := range roles {
			if profile.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "ROLE_DENIED",
			Message: "el rol '" + string(profile.Role) + "' no tiene acceso a este recurso",
		})
	}
}
