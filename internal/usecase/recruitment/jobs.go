package recruitment

import (
	"context"
	"fmt"
	"strings"

	"talent-track/internal/domain/job"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobInput struct {
	Title       string          `json:"title"`
	Department  string          `json:"department"`
	Location    string          `json:"location"`
	Status      string          `json:"status"`
	Requirement job.Requirement `json:"requirement"`
	Mandatory   []string        `json:"mandatory"`
}

func (in JobInput) apply(j *job.Job) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Requirement.MinExperienceYears < 0 {
		return fmt.Errorf("%w: min_experience_years must not be negative", ErrInvalidInput)
	}

	status := job.StatusOpen
	if strings.TrimSpace(in.Status) != "" {
		st, ok := job.ParseStatus(in.Status)
		if !ok {
			return fmt.Errorf("%w: unknown job status %q", ErrInvalidInput, in.Status)
		}
		status = st
	}

	checks := make([]job.Check, 0, len(in.Mandatory))
	for _, m := range in.Mandatory {
		c := job.Check(strings.ToLower(strings.TrimSpace(m)))
		if !c.Valid() {
			return fmt.Errorf("%w: unknown mandatory check %q", ErrInvalidInput, m)
		}
		checks = append(checks, c)
	}

	j.Title = title
	j.Department = strings.TrimSpace(in.Department)
	j.Location = strings.TrimSpace(in.Location)
	j.Status = status
	j.Requirement = in.Requirement
	j.Mandatory = checks
	return nil
}

func (s *Service) CreateJob(ctx context.Context, in JobInput) (job.Job, error) {
	now := s.now()
	j := job.Job{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	if err := in.apply(&j); err != nil {
		return job.Job{}, err
	}
	if err := s.store.CreateJob(ctx, j); err != nil {
		return job.Job{}, storeErr(err)
	}
	s.logger.Info("job created", zap.String("job_id", j.ID.String()), zap.String("title", j.Title))
	return j, nil
}

// UpdateJob replaces the editable fields of a job and drops its cached selections.
func (s *Service) UpdateJob(ctx context.Context, id uuid.UUID, in JobInput) (job.Job, error) {
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return job.Job{}, storeErr(err)
	}
	if err := in.apply(&j); err != nil {
		return job.Job{}, err
	}
	j.UpdatedAt = s.now()
	if err := s.store.UpdateJob(ctx, j); err != nil {
		return job.Job{}, storeErr(err)
	}
	s.invalidateSelections(ctx, j.ID)
	return j, nil
}

func (s *Service) SetJobStatus(ctx context.Context, id uuid.UUID, status string) (job.Job, error) {
	st, ok := job.ParseStatus(status)
	if !ok {
		return job.Job{}, fmt.Errorf("%w: unknown job status %q", ErrInvalidInput, status)
	}
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return job.Job{}, storeErr(err)
	}
	if j.Status == st {
		return j, nil
	}
	j.Status = st
	j.UpdatedAt = s.now()
	if err := s.store.UpdateJob(ctx, j); err != nil {
		return job.Job{}, storeErr(err)
	}
	s.invalidateSelections(ctx, j.ID)
	s.logger.Info("job status changed", zap.String("job_id", j.ID.String()), zap.String("status", string(st)))
	return j, nil
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return job.Job{}, storeErr(err)
	}
	return j, nil
}

func (s *Service) ListJobs(ctx context.Context) ([]job.Job, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return jobs, nil
}

func (s *Service) invalidateSelections(ctx context.Context, jobID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, SelectionCachePrefix(jobID)+"*"); err != nil {
		s.logger.Warn("selection cache invalidation failed", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}
