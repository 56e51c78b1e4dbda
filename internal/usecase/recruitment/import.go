package recruitment

import (
	"context"
	"errors"
	"fmt"

	"talent-track/internal/domain/application"
	"talent-track/internal/ingest"
	"talent-track/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ImportSummary struct {
	JobsCreated  int      `json:"jobs_created"`
	JobsExisting int      `json:"jobs_existing"`
	Applications int      `json:"applications"`
	ManualReview int      `json:"manual_review"`
	Skipped      []string `json:"skipped"`
}

// Import stores decoded fixture batches. Jobs whose ID already exists are
// reused. Applications carrying a status are stored as-is; the rest go
// through submission with mandatory checks forced into manual review.
func (s *Service) Import(ctx context.Context, batches []ingest.Batch, actor string) (ImportSummary, error) {
	sum := ImportSummary{Skipped: []string{}}

	for i, b := range batches {
		j := b.Job
		existing := false
		if j.ID != uuid.Nil {
			found, err := s.store.GetJob(ctx, j.ID)
			switch {
			case err == nil:
				j = found
				existing = true
			case !errors.Is(err, store.ErrNotFound):
				return sum, storeErr(err)
			}
		} else {
			j.ID = uuid.New()
		}
		if existing {
			sum.JobsExisting++
		} else {
			now := s.now()
			j.CreatedAt, j.UpdatedAt = now, now
			if err := s.store.CreateJob(ctx, j); err != nil {
				return sum, storeErr(err)
			}
			sum.JobsCreated++
		}

		for _, skipped := range b.Skipped {
			sum.Skipped = append(sum.Skipped, fmt.Sprintf("job %d %s", i, skipped))
		}

		for k, app := range b.Applications {
			if app.Status != "" {
				if err := s.restore(ctx, j.ID, app); err != nil {
					return sum, err
				}
				sum.Applications++
				continue
			}
			saved, err := s.submit(ctx, j, app, SubmitOptions{Force: true, Actor: actor})
			if err != nil {
				sum.Skipped = append(sum.Skipped, fmt.Sprintf("job %d application %d: %v", i, k, err))
				continue
			}
			sum.Applications++
			if saved.Status == application.StatusManualReview {
				sum.ManualReview++
			}
		}
	}

	s.logger.Info("import finished",
		zap.Int("jobs_created", sum.JobsCreated),
		zap.Int("jobs_existing", sum.JobsExisting),
		zap.Int("applications", sum.Applications),
		zap.Int("manual_review", sum.ManualReview),
		zap.Int("skipped", len(sum.Skipped)),
	)
	return sum, nil
}

// restore stores an application that already has pipeline history.
func (s *Service) restore(ctx context.Context, jobID uuid.UUID, app application.Application) error {
	now := s.now()
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	app.JobID = jobID
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Notes == nil {
		app.Notes = []application.Note{}
	}
	if app.Status == application.StatusOffer && app.OfferedAt == nil {
		offered := now
		app.OfferedAt = &offered
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return storeErr(err)
	}
	return nil
}
