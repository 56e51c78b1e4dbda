package v1

import (
	"talent-track/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterJobs(r fiber.Router, jobs *handler.JobsHandler, apps *handler.ApplicationHandler, sel *handler.SelectionHandler) {
	if r == nil {
		return
	}
	if jobs == nil {
		return
	}

	jobs.RegisterRoutes(r)
	if apps != nil {
		apps.RegisterRoutes(r)
	}
	if sel != nil {
		sel.RegisterRoutes(r)
	}
}
