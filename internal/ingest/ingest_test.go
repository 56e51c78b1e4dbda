package ingest

import (
	"errors"
	"testing"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlatAndNestedAgree(t *testing.T) {
	flat := map[string]any{
		"name":            "Ada Lovelace",
		"email":           "ada@example.com",
		"degree":          "Master of Mathematics",
		"experienceYears": 6,
		"skills":          []any{"Go", " SQL "},
		"linkedin":        "https://linkedin.com/in/ada",
	}
	nested := map[string]any{
		"status": "submitted",
		"applicant": map[string]any{
			"full_name":        "Ada Lovelace",
			"email":            "ada@example.com",
			"education":        "Master of Mathematics",
			"years_experience": "6",
			"skills":           "Go, SQL",
			"LinkedIn":         "https://linkedin.com/in/ada",
		},
	}

	a, err := Normalize(flat)
	require.NoError(t, err)
	b, err := Normalize(nested)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 6.0, a.ExperienceYears)
	assert.Equal(t, []string{"Go", "SQL"}, a.Skills)
}

func TestNormalizeNestedWinsOverFlat(t *testing.T) {
	c, err := Normalize(map[string]any{
		"name":      "stale",
		"applicant": map[string]any{"name": "fresh"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", c.Name)
}

func TestNormalizeNonNumericExperience(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"five", 0},
		{"N/A", 0},
		{"", 0},
		{"5+ years", 5},
		{"2.5", 2.5},
		{-3, 0},
	}
	for _, tt := range tests {
		c, err := Normalize(map[string]any{"name": "x", "experience": tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.ExperienceYears, "input %v", tt.in)
	}
}

func TestNormalizeInterviewScore(t *testing.T) {
	c, err := Normalize(map[string]any{"name": "x", "interview_score": "80"})
	require.NoError(t, err)
	require.NotNil(t, c.InterviewScore)
	assert.Equal(t, 80, *c.InterviewScore)

	c, err = Normalize(map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Nil(t, c.InterviewScore)
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize(map[string]any{})
	assert.True(t, errors.Is(err, ErrEmptyRecord))
}

const fixtureYAML = `
jobs:
  - title: Backend Engineer
    department: Engineering
    requirement:
      education: bachelor
      min_experience_years: 3
      skills: [Go, PostgreSQL]
    mandatory: [experience, phone]
    applications:
      - name: Grace Hopper
        email: grace@example.com
        experience: 8
        status: interview
      - applicant:
          name: Linus
          experience: unknown
      - {}
  - title: Designer
    status: closed
`

func TestParseFixture(t *testing.T) {
	batches, err := Parse([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, batches, 2)

	b := batches[0]
	assert.Equal(t, "Backend Engineer", b.Job.Title)
	assert.Equal(t, job.StatusOpen, b.Job.Status)
	assert.Equal(t, []job.Check{job.CheckExperience, job.CheckPhone}, b.Job.Mandatory)
	assert.Equal(t, 3.0, b.Job.Requirement.MinExperienceYears)
	require.Len(t, b.Applications, 2)
	assert.Equal(t, application.StatusInterview, b.Applications[0].Status)
	assert.Equal(t, "Linus", b.Applications[1].Name)
	assert.Equal(t, 0.0, b.Applications[1].ExperienceYears)
	assert.Len(t, b.Skipped, 1)

	assert.Equal(t, job.StatusClosed, batches[1].Job.Status)
}

func TestParseFixtureAcceptsJSON(t *testing.T) {
	batches, err := Parse([]byte(`{"jobs":[{"title":"QA","mandatory":["skills"],"applications":[{"name":"Sam","skills":["selenium"]}]}]}`))
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"selenium"}, batches[0].Applications[0].Skills)
}

func TestParseFixtureRejectsUnknownCheck(t *testing.T) {
	_, err := Parse([]byte("jobs:\n  - title: X\n    mandatory: [hobbies]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hobbies")
}
