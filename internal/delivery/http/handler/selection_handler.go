package handler

import (
	"context"
	"fmt"

	"talent-track/internal/delivery/http/dto"
	"talent-track/internal/delivery/http/response"
	"talent-track/internal/domain/application"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SelectionService interface {
	AutoSelect(ctx context.Context, jobID uuid.UUID, threshold *int) (recruitment.SelectionResult, error)
	CreateShortlist(ctx context.Context, jobID uuid.UUID, threshold *int, actor string) (application.Shortlist, error)
	ListShortlists(ctx context.Context, jobID uuid.UUID) ([]application.Shortlist, error)
	GetShortlist(ctx context.Context, id uuid.UUID) (application.Shortlist, error)
	ShortlistCSV(ctx context.Context, id uuid.UUID) (string, error)
}

type SelectionHandler struct {
	uc SelectionService
}

func NewSelectionHandler(uc SelectionService) *SelectionHandler {
	return &SelectionHandler{uc: uc}
}

func (h *SelectionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/jobs/:id/auto-select", h.AutoSelect)
	r.Post("/jobs/:id/shortlists", h.CreateShortlist)
	r.Get("/jobs/:id/shortlists", h.ListForJob)

	grp := r.Group("/shortlists")
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Get("/:id/csv", h.CSV)
}

// readSelectionRequest tolerates an empty body; ?threshold= overrides the body.
func readSelectionRequest(c fiber.Ctx) (dto.AutoSelectRequest, error) {
	var req dto.AutoSelectRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return req, badRequest(err)
		}
	}
	if c.Query("threshold") != "" {
		t, err := parseQueryIntStrict(c, "threshold", 0)
		if err != nil {
			return req, err
		}
		req.Threshold = &t
	}
	return req, nil
}

func (h *SelectionHandler) AutoSelect(c fiber.Ctx) error {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	req, err := readSelectionRequest(c)
	if err != nil {
		return err
	}

	res, err := h.uc.AutoSelect(c.Context(), jobID, req.Threshold)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *SelectionHandler) CreateShortlist(c fiber.Ctx) error {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	req, err := readSelectionRequest(c)
	if err != nil {
		return err
	}

	sl, err := h.uc.CreateShortlist(c.Context(), jobID, req.Threshold, actorFrom(c, req.Actor))
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, sl)
}

func (h *SelectionHandler) ListForJob(c fiber.Ctx) error {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	return h.list(c, jobID)
}

func (h *SelectionHandler) List(c fiber.Ctx) error {
	jobID, err := parseOptionalUUIDQuery(c, "job_id")
	if err != nil {
		return err
	}
	return h.list(c, jobID)
}

func (h *SelectionHandler) list(c fiber.Ctx, jobID uuid.UUID) error {
	items, err := h.uc.ListShortlists(c.Context(), jobID)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *SelectionHandler) Get(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	sl, err := h.uc.GetShortlist(c.Context(), id)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, sl)
}

func (h *SelectionHandler) CSV(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	body, err := h.uc.ShortlistCSV(c.Context(), id)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.CSV(c, fmt.Sprintf("shortlist-%s.csv", id), body)
}
