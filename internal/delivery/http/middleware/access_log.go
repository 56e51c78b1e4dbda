package middleware

import (
	"time"

	"talent-track/internal/metrics"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAccessLogMiddleware(logger *zap.Logger, m *metrics.Metrics) *AccessLogMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessLogMiddleware{logger: logger, metrics: m}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		dur := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			// The error middleware sits outside this one and writes the final status.
			status = statusFromError(err)
		}

		route := c.Route().Path
		m.metrics.HTTPRequest(c.Method(), route, status, dur)

		m.logger.Info("http access",
			zap.String("rid", rid),
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", dur),
			zap.Int("req_bytes", c.Request().Header.ContentLength()),
			zap.Int("resp_bytes", c.Response().Header.ContentLength()),
			zap.String("ua", c.Get(fiber.HeaderUserAgent)),
		)

		return err
	}
}

func statusFromError(err error) int {
	status, _, _ := normalizeError(err)
	return status
}
