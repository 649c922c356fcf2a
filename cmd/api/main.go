package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/StockCount-api/internal/application/capture"
	"github.com/jhoicas/StockCount-api/internal/application/catalog"
	"github.com/jhoicas/StockCount-api/internal/application/profileadmin"
	"github.com/jhoicas/StockCount-api/internal/application/report"
	"github.com/jhoicas/StockCount-api/internal/application/review"
	"github.com/jhoicas/StockCount-api/internal/domain/access"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
	"github.com/jhoicas/StockCount-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/StockCount-api/internal/infrastructure/pdf"
	"github.com/jhoicas/StockCount-api/internal/infrastructure/postgres"
	"github.com/jhoicas/StockCount-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/StockCount-api/internal/interfaces/http"
	"github.com/jhoicas/StockCount-api/pkg/clock"
	"github.com/jhoicas/StockCount-api/pkg/config"
	"github.com/jhoicas/StockCount-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	entryRepo := postgres.NewStockEntryRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	var materialRepo repository.MaterialRepository = postgres.NewMaterialRepository(pool)
	var plantRepo repository.PlantRepository = postgres.NewPlantRepository(pool)

	// Caché opcional de datos de referencia. Sin Redis se consulta siempre la base.
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, se continúa sin caché")
		} else {
			cacheLog := log.Component("cache")
			materialRepo = cache.NewMaterialRepo(materialRepo, rdb, cfg.Redis.TTL(), cacheLog)
			plantRepo = cache.NewPlantRepo(plantRepo, rdb, cfg.Redis.TTL(), cacheLog)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("caché redis activa")
		}
	}

	resolver := access.NewResolver(plantRepo)
	clk := clock.System()

	sessions := review.NewManager(review.Deps{
		Entries:   entryRepo,
		Materials: materialRepo,
		Resolver:  resolver,
		Clock:     clk,
		Logger:    log.Component("review"),
		FeedTTL:   cfg.Review.FeedTTL(),
		FeedSize:  cfg.Review.FeedSize,
	}, cfg.Review.SessionIdle())
	go sessions.Run(ctx, time.Minute)

	catalogUC := catalog.NewUseCase(resolver, locationRepo, materialRepo)
	captureUC := capture.NewUseCase(entryRepo, materialRepo, locationRepo, clk, log.Component("capture"))
	adminUC := profileadmin.NewUseCase(profileRepo, plantRepo, log.Component("profileadmin"))
	reportSvc := report.NewService(
		report.NewEngine(resolver, reportRepo, log.Component("report")),
		report.NewExporter(spreadsheet.NewExcelWriter(), infrapdf.NewMarotoReportRenderer()),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	limit, err := httpRouter.RateLimit(cfg.RateLimit.Rate, log.Component("http"))
	if err != nil {
		log.Fatal().Err(err).Str("rate", cfg.RateLimit.Rate).Msg("rate limit inválido")
	}
	app.Use(limit)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "StockCount API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Profiles:  profileRepo,
		CatalogUC: catalogUC,
		CaptureUC: captureUC,
		AdminUC:   adminUC,
		Sessions:  sessions,
		Reports:   reportSvc,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	sessions.CloseAll()

	log.Info().Msg("aplicación detenida")
}
