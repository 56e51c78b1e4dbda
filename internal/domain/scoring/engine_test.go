package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"talent-track/internal/domain/job"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDefaultWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights.Sum(), 1e-9)
}

func TestCalculate_FullProfile(t *testing.T) {
	c := Candidate{
		Degree:          "Bachelor of Science",
		ExperienceYears: 5,
		InterviewScore:  intPtr(80),
		LinkedIn:        "https://linkedin.com/in/jane",
		Address:         "1 Main St",
		Phone:           "+1 555 0100",
	}
	req := job.Requirement{Education: "bachelor", MinExperienceYears: 3}

	res := Calculate(c, req)

	assert.Equal(t, 100.0, res.Breakdown.EducationMatch)
	assert.Equal(t, 100.0, res.Breakdown.ExperienceMatch)
	assert.Equal(t, 100.0, res.Breakdown.SkillsMatch)
	assert.Equal(t, 100.0, res.Breakdown.CertificationsMatch)
	assert.Equal(t, 80.0, res.Breakdown.InterviewPerformance)
	assert.Equal(t, 100.0, res.Breakdown.CultureAlignment)
	assert.Equal(t, 97, res.TotalScore)
}

func TestCalculate_NoExperienceDragsScore(t *testing.T) {
	c := Candidate{
		Degree:         "Bachelor of Science",
		InterviewScore: intPtr(80),
		LinkedIn:       "x",
		Address:        "y",
		Phone:          "z",
	}
	res := Calculate(c, job.Requirement{Education: "bachelor", MinExperienceYears: 3})

	assert.Equal(t, 0.0, res.Breakdown.ExperienceMatch)
	assert.Equal(t, 72, res.TotalScore)
}

func TestCalculate_Extremes(t *testing.T) {
	all := Breakdown{
		EducationMatch: 100, ExperienceMatch: 100, SkillsMatch: 100,
		CertificationsMatch: 100, InterviewPerformance: 100, CultureAlignment: 100,
		Weights: DefaultWeights,
	}
	assert.Equal(t, 100, Composite(all))
	assert.Equal(t, 0, Composite(Breakdown{Weights: DefaultWeights}))
}

func TestCalculate_EmptyInputsStayInRange(t *testing.T) {
	res := Calculate(Candidate{}, job.Requirement{})
	require.GreaterOrEqual(t, res.TotalScore, 0)
	require.LessOrEqual(t, res.TotalScore, 100)
	// skills, certifications and experience default to full credit with no requirement
	assert.Equal(t, 60, res.TotalScore)
}

func TestCalculate_BoundedForHostileInput(t *testing.T) {
	cases := []Candidate{
		{ExperienceYears: math.NaN(), InterviewScore: intPtr(1000)},
		{ExperienceYears: -4, InterviewScore: intPtr(-50)},
		{ExperienceYears: math.Inf(1), Degree: "PhD, Master, Bachelor"},
	}
	reqs := []job.Requirement{
		{},
		{Education: "phd", MinExperienceYears: 10, Skills: []string{"go", ""}, Certifications: []string{"cka"}},
		{Education: "unknown tier", MinExperienceYears: math.NaN()},
	}
	for _, c := range cases {
		for _, r := range reqs {
			res := Calculate(c, r)
			assert.GreaterOrEqual(t, res.TotalScore, 0)
			assert.LessOrEqual(t, res.TotalScore, 100)
		}
	}
}

func TestEducationMatch(t *testing.T) {
	tests := []struct {
		name     string
		degree   string
		required string
		want     float64
	}{
		{name: "exact tier", degree: "Bachelor of Arts", required: "Bachelor", want: 100},
		{name: "higher tier capped", degree: "PhD in Physics", required: "bachelor", want: 100},
		{name: "lower tier ratio", degree: "Bachelor", required: "Master", want: 2.0 / 3.0 * 100},
		{name: "diploma vs default", degree: "High School Diploma", required: "", want: 50},
		{name: "unknown degree", degree: "Bootcamp", required: "bachelor", want: 0},
		{name: "case insensitive", degree: "MASTER OF ENGINEERING", required: "phd", want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EducationMatch(tt.degree, tt.required), 1e-9)
		})
	}
}

func TestExperienceMatch(t *testing.T) {
	tests := []struct {
		name     string
		years    float64
		required float64
		want     float64
	}{
		{name: "no requirement", years: 0, required: 0, want: 100},
		{name: "zero years", years: 0, required: 3, want: 0},
		{name: "comfortably exceeds", years: 4.5, required: 3, want: 100},
		{name: "partial", years: 1.5, required: 3, want: 50},
		{name: "meets but under 1.5x", years: 4, required: 3, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExperienceMatch(tt.years, tt.required), 1e-9)
		})
	}
}

func TestContainsMatch(t *testing.T) {
	assert.Equal(t, 100.0, containsMatch(nil, nil))
	assert.Equal(t, 100.0, containsMatch(nil, []string{"  "}))
	assert.Equal(t, 50.0, containsMatch([]string{"Golang", "PostgreSQL"}, []string{"go", "kubernetes"}))
	assert.Equal(t, 0.0, containsMatch(nil, []string{"aws"}))
	assert.Equal(t, 100.0, containsMatch([]string{"AWS Certified Solutions Architect"}, []string{"aws certified"}))
}

func TestCultureAlignment(t *testing.T) {
	assert.Equal(t, 0.0, CultureAlignment())
	assert.InDelta(t, 200.0/3.0, CultureAlignment("a", "", "c"), 1e-9)
	assert.Equal(t, 100.0, CultureAlignment("a", "b", "c"))
}

func TestBreakdownJSONKeys(t *testing.T) {
	raw, err := json.Marshal(Breakdown{EducationMatch: 80, Weights: DefaultWeights})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"education_match", "experience_match", "skills_match",
		"certifications_match", "interview_performance", "culture_alignment", "weights"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, 80.0, m["education_match"])
}
