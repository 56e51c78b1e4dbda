package handler

import (
	"errors"
	"strconv"
	"strings"

	"talent-track/internal/delivery/http/dto"
	"talent-track/internal/delivery/http/middleware"
	"talent-track/internal/delivery/http/response"
	"talent-track/internal/domain/pipeline"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const headerActor = "X-Actor"

func mapRecruitmentError(err error) error {
	if err == nil {
		return nil
	}

	var verr *pipeline.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Mandatory requirements not met",
			dto.ValidationFailureResponse{Failures: verr.Failures}, err)
	case errors.Is(err, recruitment.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, clientMessage(err), nil, err)
	case errors.Is(err, recruitment.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, recruitment.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, clientMessage(err), nil, err)
	case errors.Is(err, recruitment.ErrInternal):
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

// clientMessage strips the sentinel prefix, leaving the detail for the client.
func clientMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
}

func parseIDParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func parseOptionalUUIDQuery(c fiber.Ctx, key string) (uuid.UUID, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return id, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return v, nil
}

func parseOptionalBoolQuery(c fiber.Ctx, key string) (*bool, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return &v, nil
}

// actorFrom prefers the body value, then the X-Actor header.
func actorFrom(c fiber.Ctx, body string) string {
	if a := strings.TrimSpace(body); a != "" {
		return a
	}
	return strings.TrimSpace(c.Get(headerActor))
}
