package handler

import (
	"context"
	"strings"

	"talent-track/internal/delivery/http/response"
	"talent-track/internal/domain/analytics"
	"talent-track/internal/domain/application"
	"talent-track/internal/export"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ReportService interface {
	Analytics(ctx context.Context) (analytics.Snapshot, error)
	Report(ctx context.Context, title string) (export.Report, error)
	ReportCSV(ctx context.Context, title string) (string, error)
	Audit(ctx context.Context, applicationID uuid.UUID, limit int) ([]application.AuditEntry, error)
	AuditCSV(ctx context.Context, applicationID uuid.UUID, limit int) (string, error)
}

type ReportHandler struct {
	uc ReportService
}

func NewReportHandler(uc ReportService) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/analytics", h.Analytics)
	r.Get("/reports/hiring", h.Report)
	r.Get("/reports/hiring.csv", h.ReportCSV)
	r.Get("/audit", h.Audit)
	r.Get("/audit.csv", h.AuditCSV)
}

func (h *ReportHandler) Analytics(c fiber.Ctx) error {
	snap, err := h.uc.Analytics(c.Context())
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, snap)
}

func (h *ReportHandler) Report(c fiber.Ctx) error {
	r, err := h.uc.Report(c.Context(), c.Query("title"))
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, r)
}

func (h *ReportHandler) ReportCSV(c fiber.Ctx) error {
	body, err := h.uc.ReportCSV(c.Context(), c.Query("title"))
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.CSV(c, "hiring-report.csv", body)
}

func (h *ReportHandler) auditQuery(c fiber.Ctx) (uuid.UUID, int, error) {
	appID, err := parseOptionalUUIDQuery(c, "application_id")
	if err != nil {
		return uuid.Nil, 0, err
	}
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return uuid.Nil, 0, err
	}
	if limit < 0 {
		return uuid.Nil, 0, badRequest(nil)
	}
	return appID, limit, nil
}

func (h *ReportHandler) Audit(c fiber.Ctx) error {
	appID, limit, err := h.auditQuery(c)
	if err != nil {
		return err
	}
	if strings.EqualFold(c.Query("format"), "csv") {
		return h.AuditCSV(c)
	}
	entries, err := h.uc.Audit(c.Context(), appID, limit)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, entries)
}

func (h *ReportHandler) AuditCSV(c fiber.Ctx) error {
	appID, limit, err := h.auditQuery(c)
	if err != nil {
		return err
	}
	body, err := h.uc.AuditCSV(c.Context(), appID, limit)
	if err != nil {
		return mapRecruitmentError(err)
	}
	return response.CSV(c, "audit.csv", body)
}
