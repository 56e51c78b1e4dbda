package handler

import (
	"context"

	"talent-track/internal/delivery/http/dto"
	"talent-track/internal/delivery/http/response"
	"talent-track/internal/domain/job"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobService interface {
	CreateJob(ctx context.Context, in recruitment.JobInput) (job.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, in recruitment.JobInput) (job.Job, error)
	SetJobStatus(ctx context.Context, id uuid.UUID, status string) (job.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (job.Job, error)
	ListJobs(ctx context.Context) ([]job.Job, error)
}

type JobsHandler struct {
	uc JobService
}

func NewJobsHandler(uc JobService) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/jobs")
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Update)
	grp.Patch("/:id/status", h.SetStatus)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListJobs(c.Context())
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *JobsHandler) Create(c fiber.Ctx) error {
	var req dto.JobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	created, err := h.uc.CreateJob(c.Context(), jobInput(req))
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, created)
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	j, err := h.uc.GetJob(c.Context(), id)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, j)
}

func (h *JobsHandler) Update(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.JobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.UpdateJob(c.Context(), id, jobInput(req))
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *JobsHandler) SetStatus(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.JobStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.SetJobStatus(c.Context(), id, req.Status)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func jobInput(req dto.JobRequest) recruitment.JobInput {
	return recruitment.JobInput{
		Title:       req.Title,
		Department:  req.Department,
		Location:    req.Location,
		Status:      req.Status,
		Requirement: req.Requirement,
		Mandatory:   req.Mandatory,
	}
}
