package app

import (
	"fmt"
	"strings"

	"talent-track/internal/delivery/http/middleware"
	"talent-track/internal/delivery/http/routes"
	"talent-track/internal/logger"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(logger.Named(c.Logger, "http"))
	app.Use(errMw.Middleware())

	accessMw := middleware.NewAccessLogMiddleware(logger.Named(c.Logger, "access"), c.Metrics)
	app.Use(accessMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	routes.NewRegistry(c.Service, c.Hub, c.Metrics, logger.Named(c.Logger, "ws")).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
