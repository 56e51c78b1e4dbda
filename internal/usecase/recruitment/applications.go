package recruitment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/domain/pipeline"
	"talent-track/internal/domain/scoring"
	"talent-track/internal/domain/selection"
	"talent-track/internal/ingest"
	"talent-track/internal/logger"
	"talent-track/internal/store"
	"talent-track/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ActionNoteAdded      = "note_added"
	ActionInterviewScore = "interview_scored"
	ActionScored         = "application_scored"
)

type SubmitOptions struct {
	Force bool
	Actor string
}

// SubmitApplication normalises a raw applicant record (flat or nested under
// "applicant") and files it against jobID.
func (s *Service) SubmitApplication(ctx context.Context, jobID uuid.UUID, raw map[string]any, opts SubmitOptions) (application.Application, error) {
	c, err := ingest.Normalize(raw)
	if err != nil {
		return application.Application{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if c.Name == "" && c.Email == "" {
		return application.Application{}, fmt.Errorf("%w: name or email is required", ErrInvalidInput)
	}

	j, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return application.Application{}, storeErr(err)
	}
	if !j.IsOpen() {
		return application.Application{}, fmt.Errorf("%w: job %s is closed", ErrConflict, j.ID)
	}

	return s.submit(ctx, j, c.Application(), opts)
}

func (s *Service) submit(ctx context.Context, j job.Job, app application.Application, opts SubmitOptions) (application.Application, error) {
	app, eff, err := pipeline.Submit(app, j, pipeline.SubmitInput{
		Force: opts.Force,
		Actor: opts.Actor,
		At:    s.now(),
	})
	if err != nil {
		// *ValidationError unwraps to ErrValidationFailed; keep it so callers can list failures.
		return application.Application{}, err
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		return application.Application{}, storeErr(err)
	}

	s.applyEffects(ctx, app, j, eff)
	s.metrics.Submission(string(app.Status))
	s.publish(ws.Event{
		Type:          ws.EventApplicationSubmitted,
		JobID:         j.ID,
		ApplicationID: app.ID,
		To:            string(app.Status),
		Actor:         eff.Audit.Actor,
		Timestamp:     app.CreatedAt,
	})

	s.logger.Info("application submitted", append(applicationFields(app),
		zap.Int("failed_checks", len(app.ScreeningErrors)),
	)...)
	return app, nil
}

func (s *Service) GetApplication(ctx context.Context, id uuid.UUID) (application.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return application.Application{}, storeErr(err)
	}
	return app, nil
}

type ApplicationQuery struct {
	JobID        uuid.UUID
	Status       string
	AutoSelected *bool
}

func (s *Service) ListApplications(ctx context.Context, q ApplicationQuery) ([]application.Application, error) {
	f := store.ApplicationFilter{JobID: q.JobID, AutoSelected: q.AutoSelected}
	if strings.TrimSpace(q.Status) != "" {
		st, ok := application.ParseStatus(q.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
		}
		f.Status = st
	}
	apps, err := s.store.ListApplications(ctx, f)
	if err != nil {
		return nil, storeErr(err)
	}
	return apps, nil
}

type StatusChange struct {
	Status string
	Note   string
	Actor  string
}

// ChangeStatus moves an application to any known status. Moves are not
// restricted to the suggested stage order.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, in StatusChange) (application.Application, error) {
	var (
		from application.Status
		eff  pipeline.Effects
	)
	at := s.now()
	updated, err := s.store.ModifyApplication(ctx, id, func(a *application.Application) error {
		from = a.Status
		next, e, err := pipeline.Transition(*a, application.Status(in.Status), pipeline.Input{
			Actor: in.Actor,
			Note:  in.Note,
			At:    at,
		})
		if err != nil {
			return err
		}
		*a, eff = next, e
		return nil
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrUnknownStatus) {
			return application.Application{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return application.Application{}, storeErr(err)
	}

	j, err := s.store.GetJob(ctx, updated.JobID)
	if err != nil {
		s.logger.Warn("job lookup for notification failed", zap.String("job_id", updated.JobID.String()), zap.Error(err))
	}
	s.applyEffects(ctx, updated, j, eff)
	s.metrics.Transition(string(updated.Status))
	s.publish(ws.Event{
		Type:          ws.EventStatusChanged,
		JobID:         updated.JobID,
		ApplicationID: updated.ID,
		From:          string(from),
		To:            string(updated.Status),
		Actor:         eff.Audit.Actor,
		Timestamp:     updated.UpdatedAt,
	})

	s.logger.Info("application status changed", append(applicationFields(updated),
		zap.String("from", string(from)),
		zap.String("actor", eff.Audit.Actor),
	)...)
	return updated, nil
}

func (s *Service) AddNote(ctx context.Context, id uuid.UUID, author, text string) (application.Application, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return application.Application{}, fmt.Errorf("%w: note text is required", ErrInvalidInput)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = pipeline.SystemActor
	}

	now := s.now()
	app, err := s.store.ModifyApplication(ctx, id, func(a *application.Application) error {
		a.Notes = append(a.Notes, application.Note{Author: author, Text: text, At: now})
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		return application.Application{}, storeErr(err)
	}

	s.audit(ctx, ActionNoteAdded, author, now, map[string]any{
		"application_id": app.ID.String(),
		"note":           text,
	})
	return app, nil
}

// RecordInterview stores a 1-10 rubric rating as a 0-100 interview score.
func (s *Service) RecordInterview(ctx context.Context, id uuid.UUID, rating int, actor string) (application.Application, error) {
	score, ok := application.InterviewScoreFromRubric(rating)
	if !ok {
		return application.Application{}, fmt.Errorf("%w: rating must be between 1 and 10", ErrInvalidInput)
	}

	now := s.now()
	app, err := s.store.ModifyApplication(ctx, id, func(a *application.Application) error {
		a.InterviewScore = &score
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		return application.Application{}, storeErr(err)
	}

	s.audit(ctx, ActionInterviewScore, actor, now, map[string]any{
		"application_id":  app.ID.String(),
		"rating":          rating,
		"interview_score": score,
	})
	return app, nil
}

type ScoreResult struct {
	Application    application.Application `json:"application"`
	AIScore        int                     `json:"ai_score"`
	Breakdown      scoring.Breakdown       `json:"score_breakdown"`
	AutoSelected   bool                    `json:"auto_selected"`
	Recommendation string                  `json:"recommendation"`
	Threshold      int                     `json:"threshold"`
}

// ScoreApplication scores one application against its job and stores the result.
func (s *Service) ScoreApplication(ctx context.Context, id uuid.UUID) (ScoreResult, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return ScoreResult{}, storeErr(err)
	}
	j, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		return ScoreResult{}, storeErr(err)
	}

	threshold := s.Threshold()
	ranked := selection.AutoSelect([]application.Application{app}, j.Requirement, threshold)
	r := ranked[0]
	if r.Application, err = s.store.ModifyApplication(ctx, id, withScores(r)); err != nil {
		return ScoreResult{}, storeErr(err)
	}

	s.audit(ctx, ActionScored, pipeline.SystemActor, s.now(), map[string]any{
		"application_id": app.ID.String(),
		"ai_score":       r.AIScore,
		"auto_selected":  r.AutoSelected,
	})
	return ScoreResult{
		Application:    r.Application,
		AIScore:        r.AIScore,
		Breakdown:      r.Breakdown,
		AutoSelected:   r.AutoSelected,
		Recommendation: r.Recommendation,
		Threshold:      threshold,
	}, nil
}

func applicationFields(app application.Application) []zap.Field {
	return append(logger.ApplicationFields(app.ID.String(), app.JobID.String()),
		zap.String("status", string(app.Status)))
}
