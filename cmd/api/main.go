package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energy-marketplace/internal/config"
	"energy-marketplace/internal/interfaces/router"
	"energy-marketplace/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var fiberApp *fiber.App
var appCfg *config.Config
var deps *router.Deps

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}
	appCfg = cfg
	logger.Setup(cfg)
	app, d, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}
	fiberApp = app
	deps = d
}

func main() {
	log.Info().Str("driver", appCfg.DatabaseDriver).Bool("redis", deps.Redis != nil).Msg("dependencies connected")
	log.Info().Msgf("Server running at http://localhost:%s", appCfg.Port)
	log.Info().Msgf("Health check: http://localhost:%s/health/json", appCfg.Port)

	go func() {
		if err := fiberApp.Listen(":" + appCfg.Port); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := deps.Close(); err != nil {
		log.Error().Err(err).Msg("closing dependencies")
	}
}
