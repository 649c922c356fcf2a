package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/application/profileadmin"
)

// AdminHandler gestión de perfiles de usuario.
type AdminHandler struct {
	uc *profileadmin.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *profileadmin.UseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// ListUsers godoc
// @Summary      Usuarios con su perfil
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UserProfileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetProfile(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SaveUser godoc
// @Summary      Asignar rol, planta y estado
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        user_id  path  string                    true  "ID del usuario"
// @Param        body     body  dto.UpsertProfileRequest  true  "Perfil"
// @Success      200  {object}  dto.UserProfileResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/users/{user_id} [put]
func (h *AdminHandler) SaveUser(c *fiber.Ctx) error {
	var in dto.UpsertProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Role == "" {
		return badRequest(c, "VALIDATION", "role es requerido")
	}
	out, err := h.uc.Save(c.UserContext(), GetProfile(c), c.Params("user_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
