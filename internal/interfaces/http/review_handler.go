package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/application/review"
	"github.com/jhoicas/StockCount-api/internal/domain"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// ReviewHandler sesiones de revisión. Cada petición vuelve a aplicar el perfil vigente
// a la sesión antes de operar.
type ReviewHandler struct {
	sessions *review.Manager
}

// NewReviewHandler construye el handler.
func NewReviewHandler(sessions *review.Manager) *ReviewHandler {
	return &ReviewHandler{sessions: sessions}
}

// session busca la sesión del usuario y re-deriva su alcance. Solo un alcance vacío cierra la
// sesión; un fallo al consultarlo la deja intacta.
func (h *ReviewHandler) session(c *fiber.Ctx) (*review.Session, error) {
	profile := GetProfile(c)
	if profile == nil {
		return nil, domain.ErrUnauthorized
	}
	s, err := h.sessions.Get(c.Params("id"), profile.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyViewer(c.UserContext(), profile); err != nil {
		if errors.Is(err, domain.ErrScopeDenied) {
			_ = h.sessions.Close(s.ID(), profile.UserID)
		}
		return nil, err
	}
	return s, nil
}

func (h *ReviewHandler) snapshot(c *fiber.Ctx, s *review.Session, status int) error {
	return c.Status(status).JSON(toSessionResponse(s.Snapshot(c.Query("search"))))
}

// Open godoc
// @Summary      Abrir sesión de revisión
// @Tags         review
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "Vista"
// @Success      201  {object}  dto.SessionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/review/sessions [post]
func (h *ReviewHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	surface, ok := review.ParseSurface(in.Surface)
	if !ok {
		return badRequest(c, "VALIDATION", "surface debe ser GENERAL o FINISHED_GOODS")
	}
	s, err := h.sessions.Open(c.UserContext(), GetProfile(c), surface)
	if err != nil {
		return writeError(c, err)
	}
	return h.snapshot(c, s, fiber.StatusCreated)
}

// Get godoc
// @Summary      Estado de la sesión
// @Tags         review
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la sesión"
// @Param        search  query  string  false  "Filtro de texto"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id} [get]
func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.snapshot(c, s, fiber.StatusOK)
}

// SelectStream godoc
// @Summary      Cambiar de flujo
// @Tags         review
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la sesión"
// @Param        body  body  dto.SelectStreamRequest  true  "Flujo"
// @Success      200  {object}  dto.SessionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id}/stream [put]
func (h *ReviewHandler) SelectStream(c *fiber.Ctx) error {
	var in dto.SelectStreamRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	stream, ok := entity.ParseStream(strings.ToUpper(in.Stream))
	if !ok {
		return badRequest(c, "INVALID_STREAM", "flujo desconocido")
	}
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.SelectStream(c.UserContext(), stream); err != nil {
		return writeError(c, err)
	}
	return h.snapshot(c, s, fiber.StatusOK)
}

// SelectPlant godoc
// @Summary      Elegir planta (ADMIN)
// @Tags         review
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la sesión"
// @Param        body  body  dto.SelectPlantRequest  true  "Planta"
// @Success      200  {object}  dto.SessionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id}/plant [put]
func (h *ReviewHandler) SelectPlant(c *fiber.Ctx) error {
	var in dto.SelectPlantRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.PlantCode == "" {
		return badRequest(c, "VALIDATION", "plant_code es requerido")
	}
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.SelectPlant(c.UserContext(), in.PlantCode); err != nil {
		return writeError(c, err)
	}
	return h.snapshot(c, s, fiber.StatusOK)
}

// Reload godoc
// @Summary      Recargar filas
// @Tags         review
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id}/reload [post]
func (h *ReviewHandler) Reload(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Load(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return h.snapshot(c, s, fiber.StatusOK)
}

// UpdateEntry godoc
// @Summary      Editar una entrada localmente
// @Tags         review
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                 true  "ID de la sesión"
// @Param        entry  path  string                 true  "ID de la entrada"
// @Param        body   body  dto.EntryPatchRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.PatchResultResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id}/entries/{entry} [patch]
func (h *ReviewHandler) UpdateEntry(c *fiber.Ctx) error {
	var in dto.EntryPatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	entryID := c.Params("entry")
	out, err := s.UpdateLocal(entryID, toPatch(in))
	if err != nil {
		return writeError(c, err)
	}
	for _, r := range s.Rows() {
		if r.ID == entryID {
			return c.JSON(dto.PatchResultResponse{
				Entry:    toEntryResponse(r),
				Applied:  fieldNames(out.Applied),
				Rejected: fieldNames(out.Rejected),
			})
		}
	}
	return writeError(c, domain.ErrNotFound)
}

// SaveEntry godoc
// @Summary      Guardar una entrada
// @Description  Un fallo remoto no devuelve error: se informa en el feed de la sesión.
// @Tags         review
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "ID de la sesión"
// @Param        entry  path  string  true  "ID de la entrada"
// @Success      200  {object}  dto.SessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id}/entries/{entry}/save [post]
func (h *ReviewHandler) SaveEntry(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Save(c.UserContext(), c.Params("entry")); err != nil {
		return writeError(c, err)
	}
	return h.snapshot(c, s, fiber.StatusOK)
}

// Close godoc
// @Summary      Cerrar sesión de revisión
// @Tags         review
// @Security     Bearer
// @Param        id  path  string  true  "ID de la sesión"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/review/sessions/{id} [delete]
func (h *ReviewHandler) Close(c *fiber.Ctx) error {
	profile := GetProfile(c)
	if profile == nil {
		return writeError(c, domain.ErrUnauthorized)
	}
	if err := h.sessions.Close(c.Params("id"), profile.UserID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
