package v1

import (
	"talent-track/internal/delivery/http/handler"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, svc *recruitment.Service) {
	if r == nil {
		return
	}

	RegisterJobs(r,
		handler.NewJobsHandler(svc),
		handler.NewApplicationHandler(svc),
		handler.NewSelectionHandler(svc),
	)
	RegisterReports(r, handler.NewReportHandler(svc))
}
