package routes

import (
	v1 "talent-track/internal/delivery/http/routes/v1"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, svc *recruitment.Service) {
	if r == nil || svc == nil {
		return
	}

	v1.Register(r, svc)
}
