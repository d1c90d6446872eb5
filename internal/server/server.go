package server

import (
	"context"
	"time"

	"preload-service/internal/blob"
	"preload-service/internal/catalog"
	"preload-service/internal/config"
	"preload-service/internal/prediction"
	"preload-service/internal/preload"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Registry *prediction.Registry
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	repo := catalog.NewRepository(db)
	source := blob.NewClient(cfg.BlobBaseURL, cfg.LayerTimeout())

	memory := preload.NewMemoryLayer(source, cfg.MemoryCacheBytes)
	var remote *preload.RedisLayer
	layers := []preload.CacheLayer{memory}
	if redisClient != nil {
		remote = preload.NewRedisLayer(redisClient, source, cfg.CacheTTL())
		layers = append(layers, remote)
	}
	orchestrator := preload.NewOrchestrator(layers, preload.OrchestratorConfig{
		LayerTimeout: cfg.LayerTimeout(),
		FanOut:       cfg.PreloadFanout,
	})

	selector := prediction.NewSelector(repo, prediction.SelectorConfig{
		RadiusMeters:      cfg.PredictionRadiusM,
		DirectionalFilter: cfg.DirectionalFilter,
		ToleranceDeg:      cfg.DirectionToleranceDeg,
	})

	var preloader prediction.Preloader
	if cfg.CacheEnabled {
		preloader = orchestrator
	}
	registry := prediction.NewRegistry(selector, preloader, prediction.SessionConfig{
		DebounceInterval: cfg.DebounceInterval(),
		MinDisplacementM: cfg.DebounceMinDisplacementM,
		IdleTimeout:      cfg.SessionIdleTimeout(),
	})
	if idle := cfg.SessionIdleTimeout(); idle > 0 {
		interval := idle / 2
		if interval < time.Second {
			interval = time.Second
		}
		registry.StartSweeper(context.Background(), interval)
	}

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Registry: registry,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	catalog.RegisterRoutes(app.Group("/objects"), repo)
	prediction.RegisterRoutes(app.Group("/predictions"), registry, selector)
	preload.RegisterRoutes(app.Group("/cache"), orchestrator, memory, remote)

	return s
}
