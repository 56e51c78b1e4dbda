package recruitment

import (
	"context"

	"talent-track/internal/domain/analytics"
	"talent-track/internal/domain/application"
	"talent-track/internal/export"
	"talent-track/internal/store"

	"github.com/google/uuid"
)

func (s *Service) Analytics(ctx context.Context) (analytics.Snapshot, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return analytics.Snapshot{}, storeErr(err)
	}
	apps, err := s.store.ListApplications(ctx, store.ApplicationFilter{})
	if err != nil {
		return analytics.Snapshot{}, storeErr(err)
	}
	return analytics.Analyze(analytics.State{Jobs: jobs, Applications: apps}, s.now(), s.analytics), nil
}

func (s *Service) Report(ctx context.Context, title string) (export.Report, error) {
	snap, err := s.Analytics(ctx)
	if err != nil {
		return export.Report{}, err
	}
	return export.BuildReport(snap, title, snap.GeneratedAt), nil
}

func (s *Service) ReportCSV(ctx context.Context, title string) (string, error) {
	r, err := s.Report(ctx, title)
	if err != nil {
		return "", err
	}
	return export.ReportCSV(r), nil
}

// Audit lists audit entries oldest first, optionally for one application.
func (s *Service) Audit(ctx context.Context, applicationID uuid.UUID, limit int) ([]application.AuditEntry, error) {
	if limit < 0 {
		limit = 0
	}
	entries, err := s.store.ListAudit(ctx, store.AuditFilter{ApplicationID: applicationID, Limit: limit})
	if err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}

func (s *Service) AuditCSV(ctx context.Context, applicationID uuid.UUID, limit int) (string, error) {
	entries, err := s.Audit(ctx, applicationID, limit)
	if err != nil {
		return "", err
	}
	return export.AuditCSV(entries), nil
}
