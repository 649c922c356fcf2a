package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/StockCount-api/internal/application/capture"
	"github.com/jhoicas/StockCount-api/internal/application/catalog"
	"github.com/jhoicas/StockCount-api/internal/application/profileadmin"
	"github.com/jhoicas/StockCount-api/internal/application/report"
	"github.com/jhoicas/StockCount-api/internal/application/review"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Profiles  profileLoader
	CatalogUC *catalog.UseCase
	CaptureUC *capture.UseCase
	AdminUC   *profileadmin.UseCase
	Sessions  *review.Manager
	Reports   *report.Service
	JWTSecret string
	Logger    zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token y un perfil activo.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireProfile(deps.Profiles, deps.Logger))

	// Alcance y catálogo
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	api.Get("/me/scope", catalogHandler.Scope)
	api.Get("/plants/:plant/locations", catalogHandler.Locations)
	api.Get("/materials", catalogHandler.Materials)

	// Captura
	captureHandler := NewCaptureHandler(deps.CaptureUC)
	api.Post("/entries/:stream", captureHandler.Submit)

	// Revisión
	sessions := api.Group("/review/sessions")
	reviewHandler := NewReviewHandler(deps.Sessions)
	sessions.Post("/", reviewHandler.Open)
	sessions.Get("/:id", reviewHandler.Get)
	sessions.Delete("/:id", reviewHandler.Close)
	sessions.Put("/:id/stream", reviewHandler.SelectStream)
	sessions.Put("/:id/plant", reviewHandler.SelectPlant)
	sessions.Post("/:id/reload", reviewHandler.Reload)
	sessions.Patch("/:id/entries/:entry", reviewHandler.UpdateEntry)
	sessions.Post("/:id/entries/:entry/save", reviewHandler.SaveEntry)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/:family/:key", reportHandler.Aggregate)
	reports.Get("/:family/:key/export", reportHandler.Export)

	// Administración de usuarios (solo ADMIN)
	admin := api.Group("/admin", RequireRole(entity.RoleAdmin))
	adminHandler := NewAdminHandler(deps.AdminUC)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:user_id", adminHandler.SaveUser)
}
