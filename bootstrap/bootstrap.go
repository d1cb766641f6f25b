package bootstrap

import (
	"energy-marketplace/internal/config"
	"energy-marketplace/internal/interfaces/router"
	"energy-marketplace/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless deployments (the api handler imports this package, not internal).
// Connections live as long as the process.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg)
	app, _, err := router.CreateApp(cfg)
	return app, err
}
