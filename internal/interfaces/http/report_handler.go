package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/application/report"
)

// ReportHandler reportes agregados y su exportación.
type ReportHandler struct {
	svc *report.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func parseReportRequest(c *fiber.Ctx) (report.Family, report.Key, dto.ReportQuery, bool) {
	var q dto.ReportQuery
	family, ok := report.ParseFamily(c.Params("family"))
	if !ok {
		return "", "", q, false
	}
	key, ok := report.ParseKey(c.Params("key"))
	if !ok {
		return "", "", q, false
	}
	if err := c.QueryParser(&q); err != nil {
		return "", "", q, false
	}
	return family, key, q, true
}

// Aggregate godoc
// @Summary      Reporte agregado
// @Description  Si el procedimiento falla, rows llega vacío y alert trae el mensaje.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        family         path   string  true   "general o fg"
// @Param        key            path   string  true   "A, B, C o D"
// @Param        plant_id       query  string  false  "Planta (ADMIN)"
// @Param        material_type  query  string  false  "RM, PM, P5, FG o ALL"
// @Param        search         query  string  false  "Filtro de texto"
// @Success      200  {object}  dto.ReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/{family}/{key} [get]
func (h *ReportHandler) Aggregate(c *fiber.Ctx) error {
	family, key, q, ok := parseReportRequest(c)
	if !ok {
		return badRequest(c, "INVALID_REPORT", "familia o clave de reporte inválida")
	}
	rep, err := h.svc.Aggregate(c.UserContext(), GetProfile(c), family, key, report.Filters{
		PlantID:      q.PlantID,
		MaterialType: q.MaterialType,
		Search:       q.Search,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReportResponse(rep))
}

// Export godoc
// @Summary      Exportar reporte
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/pdf
// @Param        family         path   string  true   "general o fg"
// @Param        key            path   string  true   "A, B, C o D"
// @Param        plant_id       query  string  false  "Planta (ADMIN)"
// @Param        material_type  query  string  false  "RM, PM, P5, FG o ALL"
// @Param        search         query  string  false  "Filtro de texto"
// @Param        format         query  string  false  "xlsx o pdf"  default(xlsx)
// @Success      200  {file}    file
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reports/{family}/{key}/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	family, key, q, ok := parseReportRequest(c)
	if !ok {
		return badRequest(c, "INVALID_REPORT", "familia o clave de reporte inválida")
	}
	file, err := h.svc.Export(c.UserContext(), GetProfile(c), family, key, report.Filters{
		PlantID:      q.PlantID,
		MaterialType: q.MaterialType,
		Search:       q.Search,
	}, q.Format)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}
