package v1

import (
	"talent-track/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterReports(r fiber.Router, reports *handler.ReportHandler) {
	if r == nil || reports == nil {
		return
	}

	reports.RegisterRoutes(r)
}
