package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockCount-api/internal/application/capture"
	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// CaptureHandler alta de conteos por ubicación.
type CaptureHandler struct {
	uc *capture.UseCase
}

// NewCaptureHandler construye el handler.
func NewCaptureHandler(uc *capture.UseCase) *CaptureHandler {
	return &CaptureHandler{uc: uc}
}

// Submit godoc
// @Summary      Registrar conteos
// @Tags         entries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        stream  path  string              true  "NORMAL, MANUAL, FG o FG_MANUAL"
// @Param        body    body  dto.CaptureRequest  true  "Líneas de conteo"
// @Success      201  {object}  dto.CaptureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/entries/{stream} [post]
func (h *CaptureHandler) Submit(c *fiber.Ctx) error {
	stream, ok := entity.ParseStream(strings.ToUpper(c.Params("stream")))
	if !ok {
		return badRequest(c, "INVALID_STREAM", "flujo desconocido")
	}
	var in dto.CaptureRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.LocationCode == "" || len(in.Lines) == 0 {
		return badRequest(c, "VALIDATION", "location_code y lines son requeridos")
	}
	out, err := h.uc.Submit(c.UserContext(), GetProfile(c), stream, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
