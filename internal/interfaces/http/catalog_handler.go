package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockCount-api/internal/application/catalog"
	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
)

// CatalogHandler alcance del usuario y datos de referencia.
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Scope godoc
// @Summary      Alcance del usuario
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        surface  query  string  false  "REVIEW o REPORT"  default(REVIEW)
// @Success      200  {object}  dto.ScopeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/me/scope [get]
func (h *CatalogHandler) Scope(c *fiber.Ctx) error {
	surface := access.SurfaceReview
	switch strings.ToUpper(c.Query("surface")) {
	case "", string(access.SurfaceReview):
	case string(access.SurfaceReport):
		surface = access.SurfaceReport
	default:
		return badRequest(c, "VALIDATION", "surface debe ser REVIEW o REPORT")
	}
	out, err := h.uc.Scope(c.UserContext(), GetProfile(c), surface)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Locations godoc
// @Summary      Ubicaciones activas de una planta
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        plant  path  string  true  "Código de planta"
// @Success      200  {array}   dto.LocationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/plants/{plant}/locations [get]
func (h *CatalogHandler) Locations(c *fiber.Ctx) error {
	out, err := h.uc.Locations(c.UserContext(), GetProfile(c), c.Params("plant"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Materials godoc
// @Summary      Materiales de una ubicación
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        plant     query  string  true   "Código de planta"
// @Param        location  query  string  true   "Código de ubicación"
// @Param        type      query  string  false  "RM, PM, P5, FG o ALL"
// @Success      200  {array}   dto.MaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/materials [get]
func (h *CatalogHandler) Materials(c *fiber.Ctx) error {
	var q dto.MaterialQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.Materials(c.UserContext(), GetProfile(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
