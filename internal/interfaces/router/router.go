package router

import (
	"context"
	"errors"
	"net/http"

	"energy-marketplace/internal/application/contractevents"
	contractsvc "energy-marketplace/internal/application/contracts"
	portfoliosvc "energy-marketplace/internal/application/portfolio"
	"energy-marketplace/internal/config"
	"energy-marketplace/internal/infrastructure/cache"
	"energy-marketplace/internal/infrastructure/database"
	"energy-marketplace/internal/infrastructure/events"
	contracthandler "energy-marketplace/internal/interfaces/handlers/contracts"
	healthhandler "energy-marketplace/internal/interfaces/handlers/health"
	portfoliohandler "energy-marketplace/internal/interfaces/handlers/portfolio"
	"energy-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the connections opened by CreateApp. Redis is nil when REDIS_URL is unset.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher events.Publisher
}

// Close releases every connection, returning the first error.
func (d *Deps) Close() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// OpenDeps connects the database (and migrates it), Redis and the event publisher.
func OpenDeps(ctx context.Context, cfg *config.Config) (*Deps, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	deps := &Deps{DB: db, Publisher: events.Nop{}}

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Redis = rdb

	if len(cfg.KafkaBrokers) > 0 {
		deps.Publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing contract events to kafka")
	}
	return deps, nil
}

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	deps, err := OpenDeps(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewApp(cfg, deps), deps, nil
}

// NewApp registers middleware and routes over already opened deps.
func NewApp(cfg *config.Config, deps *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(deps.Redis),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins}))
	app.Use(middleware.Tracing())
	app.Use(middleware.HealthMarker(deps.Redis))
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            deps.Redis,
		DB:             &database.Pinger{DB: deps.DB},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health", hh.Liveness)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)

	cs := &contractsvc.Service{DB: deps.DB, Publisher: deps.Publisher}
	ch := &contracthandler.Handlers{
		Service: cs,
		Events:  &contractevents.Service{DB: deps.DB},
	}
	cg := app.Group("/contracts")
	cg.Post("/", ch.CreateContract)
	cg.Get("/", ch.ListContracts)
	cg.Get("/stats", ch.MarketStats)
	cg.Get("/:id", ch.GetContract)
	cg.Put("/:id", ch.UpdateContract)
	cg.Patch("/:id", ch.UpdateContract)
	cg.Delete("/:id", ch.DeleteContract)
	cg.Get("/:id/events", ch.ListEvents)

	ps := &portfoliosvc.Service{DB: deps.DB, Publisher: deps.Publisher}
	ph := &portfoliohandler.Handlers{Service: ps}
	pg := app.Group("/portfolio")
	pg.Get("/", ph.GetPortfolio)
	pg.Get("/export", ph.Export)
	pg.Post("/items", ph.AddItem)
	pg.Delete("/items/:contract_id", ph.RemoveItem)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
