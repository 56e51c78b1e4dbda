package recruitment

import (
	"context"
	"fmt"
	"strings"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/pipeline"
	"talent-track/internal/domain/selection"
	"talent-track/internal/export"
	"talent-track/internal/store"
	"talent-track/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ActionShortlistCreated = "shortlist_created"

type SelectionResult struct {
	JobID     uuid.UUID          `json:"job_id"`
	Threshold int                `json:"threshold"`
	Ranked    []selection.Ranked `json:"ranked"`
	Selected  int                `json:"selected"`
	Cached    bool               `json:"cached"`
}

// resolveThreshold returns the configured default for nil and rejects values
// outside the operator range.
func (s *Service) resolveThreshold(threshold *int) (int, error) {
	if threshold == nil {
		return s.Threshold(), nil
	}
	if !selection.ThresholdInRange(*threshold) {
		return 0, fmt.Errorf("%w: threshold %d not in [%d,%d]", ErrInvalidInput, *threshold, selection.MinThreshold, selection.MaxThreshold)
	}
	return *threshold, nil
}

// AutoSelect ranks every application of a job and stores the attached scores.
// Results are cached under a fingerprint of the job requirement, the threshold
// and the applications' update times.
func (s *Service) AutoSelect(ctx context.Context, jobID uuid.UUID, threshold *int) (SelectionResult, error) {
	t, err := s.resolveThreshold(threshold)
	if err != nil {
		return SelectionResult{}, err
	}
	j, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return SelectionResult{}, storeErr(err)
	}
	apps, err := s.store.ListApplications(ctx, store.ApplicationFilter{JobID: jobID})
	if err != nil {
		return SelectionResult{}, storeErr(err)
	}

	key := SelectionCacheKey(j.ID, j.Requirement, t, apps)
	if s.cache != nil {
		var cached SelectionResult
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("selection cache read failed", zap.String("job_id", jobID.String()), zap.Error(err))
		}
		if ok {
			s.metrics.Selection(true)
			cached.Cached = true
			return cached, nil
		}
	}
	s.metrics.Selection(false)

	ranked := selection.AutoSelect(apps, j.Requirement, t)
	for i, r := range ranked {
		stored, err := s.store.ModifyApplication(ctx, r.Application.ID, withScores(r))
		if err != nil {
			return SelectionResult{}, storeErr(err)
		}
		ranked[i].Application = stored
	}

	res := SelectionResult{
		JobID:     j.ID,
		Threshold: t,
		Ranked:    ranked,
		Selected:  len(selection.Selected(ranked)),
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, res, s.cacheTTL); err != nil {
			s.logger.Warn("selection cache write failed", zap.String("job_id", jobID.String()), zap.Error(err))
		}
	}

	s.logger.Info("auto-select completed",
		zap.String("job_id", jobID.String()),
		zap.Int("threshold", t),
		zap.Int("candidates", len(ranked)),
		zap.Int("selected", res.Selected),
	)
	return res, nil
}

// withScores copies only the score fields of r onto the stored record, so
// status changes and notes written since the applications were listed survive.
func withScores(r selection.Ranked) store.ModifyFunc {
	return func(a *application.Application) error {
		a.AIScore = r.Application.AIScore
		a.ScoreBreakdown = r.Application.ScoreBreakdown
		a.AutoSelected = r.AutoSelected
		a.Recommendation = r.Recommendation
		return nil
	}
}

// CreateShortlist snapshots the auto-selected candidates of a job. Each
// shortlisted candidate with an email is notified.
func (s *Service) CreateShortlist(ctx context.Context, jobID uuid.UUID, threshold *int, actor string) (application.Shortlist, error) {
	res, err := s.AutoSelect(ctx, jobID, threshold)
	if err != nil {
		return application.Shortlist{}, err
	}
	j, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return application.Shortlist{}, storeErr(err)
	}

	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = pipeline.SystemActor
	}
	selected := selection.Selected(res.Ranked)
	sl := application.Shortlist{
		ID:        uuid.New(),
		JobID:     jobID,
		Threshold: res.Threshold,
		Entries:   make([]application.ShortlistEntry, 0, len(selected)),
		CreatedBy: actor,
		CreatedAt: s.now(),
	}
	for _, r := range selected {
		sl.Entries = append(sl.Entries, application.ShortlistEntry{
			ApplicationID: r.Application.ID,
			Name:          r.Application.Name,
			Email:         r.Application.Email,
			Score:         r.AIScore,
		})
	}

	if err := s.store.CreateShortlist(ctx, sl); err != nil {
		return application.Shortlist{}, storeErr(err)
	}

	s.audit(ctx, ActionShortlistCreated, actor, sl.CreatedAt, map[string]any{
		"shortlist_id": sl.ID.String(),
		"job_id":       jobID.String(),
		"threshold":    sl.Threshold,
		"count":        len(sl.Entries),
	})
	for _, r := range selected {
		s.notify(pipeline.Shortlisted(r.Application), j)
	}
	s.publish(ws.Event{
		Type:        ws.EventShortlistCreated,
		JobID:       jobID,
		ShortlistID: sl.ID,
		Actor:       actor,
		Timestamp:   sl.CreatedAt,
	})

	s.logger.Info("shortlist created",
		zap.String("shortlist_id", sl.ID.String()),
		zap.String("job_id", jobID.String()),
		zap.Int("entries", len(sl.Entries)),
	)
	return sl, nil
}

// ListShortlists returns shortlists newest first. A nil jobID lists all jobs.
func (s *Service) ListShortlists(ctx context.Context, jobID uuid.UUID) ([]application.Shortlist, error) {
	out, err := s.store.ListShortlists(ctx, jobID)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (s *Service) GetShortlist(ctx context.Context, id uuid.UUID) (application.Shortlist, error) {
	sl, err := s.store.GetShortlist(ctx, id)
	if err != nil {
		return application.Shortlist{}, storeErr(err)
	}
	return sl, nil
}

func (s *Service) ShortlistCSV(ctx context.Context, id uuid.UUID) (string, error) {
	sl, err := s.GetShortlist(ctx, id)
	if err != nil {
		return "", err
	}
	return export.ShortlistCSV(sl), nil
}
