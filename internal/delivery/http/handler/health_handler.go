package handler

import (
	"context"
	"time"

	"talent-track/internal/delivery/http/dto"
	"talent-track/internal/delivery/http/response"

	"github.com/gofiber/fiber/v3"
)

type HealthService interface {
	Ping(ctx context.Context) error
	Threshold() int
}

type HealthHandler struct {
	uc      HealthService
	timeout time.Duration
}

func NewHealthHandler(uc HealthService) *HealthHandler {
	return &HealthHandler{uc: uc, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	res := dto.HealthResponse{Status: "ok", Store: "ok", Threshold: h.uc.Threshold()}
	if err := h.uc.Ping(ctx); err != nil {
		res.Status = "degraded"
		res.Store = err.Error()
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, res)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
