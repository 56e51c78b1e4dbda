package handler

import (
	"context"
	"strconv"

	"talent-track/internal/delivery/http/dto"
	"talent-track/internal/delivery/http/response"
	"talent-track/internal/domain/application"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ApplicationService interface {
	SubmitApplication(ctx context.Context, jobID uuid.UUID, raw map[string]any, opts recruitment.SubmitOptions) (application.Application, error)
	ListApplications(ctx context.Context, q recruitment.ApplicationQuery) ([]application.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (application.Application, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, in recruitment.StatusChange) (application.Application, error)
	AddNote(ctx context.Context, id uuid.UUID, author, text string) (application.Application, error)
	RecordInterview(ctx context.Context, id uuid.UUID, rating int, actor string) (application.Application, error)
	ScoreApplication(ctx context.Context, id uuid.UUID) (recruitment.ScoreResult, error)
}

type ApplicationHandler struct {
	uc ApplicationService
}

func NewApplicationHandler(uc ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/jobs/:id/applications", h.Submit)
	r.Get("/jobs/:id/applications", h.ListForJob)

	grp := r.Group("/applications")
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id/status", h.ChangeStatus)
	grp.Post("/:id/notes", h.AddNote)
	grp.Post("/:id/interview", h.RecordInterview)
	grp.Post("/:id/score", h.Score)
}

// Submit accepts the applicant fields flat or nested under "applicant".
// ?force=true files a failing application for manual review.
func (h *ApplicationHandler) Submit(c fiber.Ctx) error {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	force := false
	if s := c.Query("force"); s != "" {
		force, err = strconv.ParseBool(s)
		if err != nil {
			return badRequest(err)
		}
	}

	raw := map[string]any{}
	if err := c.Bind().Body(&raw); err != nil {
		return badRequest(err)
	}

	actor, _ := raw["actor"].(string)
	delete(raw, "actor")

	app, err := h.uc.SubmitApplication(c.Context(), jobID, raw, recruitment.SubmitOptions{
		Force: force,
		Actor: actorFrom(c, actor),
	})
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, app)
}

func (h *ApplicationHandler) ListForJob(c fiber.Ctx) error {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	return h.list(c, jobID)
}

func (h *ApplicationHandler) List(c fiber.Ctx) error {
	jobID, err := parseOptionalUUIDQuery(c, "job_id")
	if err != nil {
		return err
	}
	return h.list(c, jobID)
}

func (h *ApplicationHandler) list(c fiber.Ctx, jobID uuid.UUID) error {
	selected, err := parseOptionalBoolQuery(c, "auto_selected")
	if err != nil {
		return err
	}
	items, err := h.uc.ListApplications(c.Context(), recruitment.ApplicationQuery{
		JobID:        jobID,
		Status:       c.Query("status"),
		AutoSelected: selected,
	})
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ApplicationHandler) Get(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	app, err := h.uc.GetApplication(c.Context(), id)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, app)
}

func (h *ApplicationHandler) ChangeStatus(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusChangeRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.ChangeStatus(c.Context(), id, recruitment.StatusChange{
		Status: req.Status,
		Note:   req.Note,
		Actor:  actorFrom(c, req.Actor),
	})
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *ApplicationHandler) AddNote(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.AddNote(c.Context(), id, actorFrom(c, req.Author), req.Text)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *ApplicationHandler) RecordInterview(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.InterviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.RecordInterview(c.Context(), id, req.Rating, actorFrom(c, req.Actor))
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *ApplicationHandler) Score(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.uc.ScoreApplication(c.Context(), id)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
