package memory

import (
	"maps"
	"slices"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
)

func cloneJob(j job.Job) job.Job {
	j.Requirement.Skills = slices.Clone(j.Requirement.Skills)
	j.Requirement.Certifications = slices.Clone(j.Requirement.Certifications)
	j.Mandatory = slices.Clone(j.Mandatory)
	return j
}

func cloneApplication(a application.Application) application.Application {
	a.Skills = slices.Clone(a.Skills)
	a.Certifications = slices.Clone(a.Certifications)
	a.ScreeningErrors = slices.Clone(a.ScreeningErrors)
	a.Notes = slices.Clone(a.Notes)
	if a.AIScore != nil {
		v := *a.AIScore
		a.AIScore = &v
	}
	if a.InterviewScore != nil {
		v := *a.InterviewScore
		a.InterviewScore = &v
	}
	if a.ScoreBreakdown != nil {
		b := *a.ScoreBreakdown
		a.ScoreBreakdown = &b
	}
	if a.OfferedAt != nil {
		t := *a.OfferedAt
		a.OfferedAt = &t
	}
	if a.Testing != nil {
		t := *a.Testing
		t.Results = maps.Clone(t.Results)
		a.Testing = &t
	}
	return a
}
