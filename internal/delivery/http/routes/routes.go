package routes

import (
	"talent-track/internal/delivery/http/handler"
	"talent-track/internal/metrics"
	"talent-track/internal/usecase/recruitment"
	"talent-track/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"go.uber.org/zap"
)

type Registry struct {
	svc     *recruitment.Service
	health  *handler.HealthHandler
	ws      *ws.Handler
	metrics *metrics.Metrics
}

// NewRegistry wires the HTTP surface. hub and m may be nil, which leaves out
// the websocket stream and the metrics endpoint.
func NewRegistry(svc *recruitment.Service, hub *ws.Hub, m *metrics.Metrics, logger *zap.Logger) *Registry {
	r := &Registry{
		svc:     svc,
		health:  handler.NewHealthHandler(svc),
		metrics: m,
	}
	if hub != nil {
		r.ws = ws.NewHandler(hub, logger)
	}
	return r
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerMetrics(app *fiber.App) {
	if r.metrics == nil {
		return
	}
	app.Get("/metrics", adaptor.HTTPHandler(r.metrics.Handler()))
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ws == nil {
		return
	}
	app.Get("/ws/pipeline", r.ws.HandlePipelineWS)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.svc)
}
