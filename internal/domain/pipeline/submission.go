package pipeline

import (
	"fmt"
	"strings"
	"time"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/domain/scoring"

	"github.com/google/uuid"
)

// ValidationError carries the failing mandatory checks of a submission.
type ValidationError struct {
	Failures []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(e.Failures, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidateSubmission evaluates the job's mandatory checks and returns a
// human-readable message for each one the candidate fails.
func ValidateSubmission(app application.Application, j job.Job) []string {
	failures := make([]string, 0)
	req := j.Requirement

	for _, check := range j.Mandatory {
		switch check {
		case job.CheckEducation:
			if scoring.EducationMatch(app.Degree, req.Education) < 100 {
				failures = append(failures, fmt.Sprintf("education below required level (%s)", describeEducation(req.Education)))
			}
		case job.CheckExperience:
			if req.MinExperienceYears > 0 && app.ExperienceYears < req.MinExperienceYears {
				failures = append(failures, fmt.Sprintf("experience below required %g years", req.MinExperienceYears))
			}
		case job.CheckSkills:
			if missing := missingEntries(app.Skills, req.Skills); len(missing) > 0 {
				failures = append(failures, "missing required skills: "+strings.Join(missing, ", "))
			}
		case job.CheckCertifications:
			if missing := missingEntries(app.Certifications, req.Certifications); len(missing) > 0 {
				failures = append(failures, "missing required certifications: "+strings.Join(missing, ", "))
			}
		case job.CheckLinkedIn:
			if strings.TrimSpace(app.LinkedIn) == "" {
				failures = append(failures, "linkedin profile is required")
			}
		case job.CheckAddress:
			if strings.TrimSpace(app.Address) == "" {
				failures = append(failures, "address is required")
			}
		case job.CheckPhone:
			if strings.TrimSpace(app.Phone) == "" {
				failures = append(failures, "phone is required")
			}
		}
	}
	return failures
}

type SubmitInput struct {
	Force bool
	Actor string
	At    time.Time
}

// Submit creates a new application for j. When mandatory checks fail and the
// operator has not forced the submission, a *ValidationError is returned; with
// Force the application enters manual review with the failures recorded.
func Submit(app application.Application, j job.Job, in SubmitInput) (application.Application, Effects, error) {
	failures := ValidateSubmission(app, j)
	if len(failures) > 0 && !in.Force {
		return application.Application{}, Effects{}, &ValidationError{Failures: failures}
	}

	at := in.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		actor = SystemActor
	}

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	app.JobID = j.ID
	app.Status = application.StatusSubmitted
	app.ScreeningErrors = nil
	if len(failures) > 0 {
		app.Status = application.StatusManualReview
		app.ScreeningErrors = failures
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = at
	}
	app.UpdatedAt = at
	if app.Notes == nil {
		app.Notes = []application.Note{}
	}

	details := map[string]any{
		"application_id": app.ID.String(),
		"job_id":         j.ID.String(),
		"status":         string(app.Status),
	}
	if len(failures) > 0 {
		details["failed_checks"] = failures
	}

	eff := Effects{
		Audit: AuditIntent{
			Action:    ActionSubmitted,
			Details:   details,
			Timestamp: at,
			Actor:     actor,
		},
		Notification: notificationFor(app, TemplateApplicationReceived, ""),
	}
	if eff.Notification != nil {
		eff.Notification.Data["jobTitle"] = j.Title
	}

	return app, eff, nil
}

func describeEducation(required string) string {
	if strings.TrimSpace(required) == "" {
		return "bachelor"
	}
	return required
}

func missingEntries(have, required []string) []string {
	missing := make([]string, 0)
	for _, r := range required {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		needle := strings.ToLower(r)
		found := false
		for _, h := range have {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, r)
		}
	}
	return missing
}
