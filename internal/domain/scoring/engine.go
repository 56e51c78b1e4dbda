// Package scoring computes the composite 0-100 fitness score of one candidate
// against one job requirement. Every function here is pure and total: malformed
// input degrades the affected sub-score to 0 instead of failing.
package scoring

import (
	"math"
	"strings"

	"talent-track/internal/domain/job"
)

// Weights of each sub-score in the composite. They sum to 1.00.
type Weights struct {
	Education      float64 `json:"education"`
	Experience     float64 `json:"experience"`
	Skills         float64 `json:"skills"`
	Certifications float64 `json:"certifications"`
	Interview      float64 `json:"interview"`
	Culture        float64 `json:"culture"`
}

var DefaultWeights = Weights{
	Education:      0.20,
	Experience:     0.25,
	Skills:         0.25,
	Certifications: 0.10,
	Interview:      0.15,
	Culture:        0.05,
}

func (w Weights) Sum() float64 {
	return w.Education + w.Experience + w.Skills + w.Certifications + w.Interview + w.Culture
}

// Breakdown holds the six named sub-scores, each in [0,100].
type Breakdown struct {
	EducationMatch       float64 `json:"education_match"`
	ExperienceMatch      float64 `json:"experience_match"`
	SkillsMatch          float64 `json:"skills_match"`
	CertificationsMatch  float64 `json:"certifications_match"`
	InterviewPerformance float64 `json:"interview_performance"`
	CultureAlignment     float64 `json:"culture_alignment"`
	Weights              Weights `json:"weights"`
}

// Candidate is the normalized view of an application the calculator needs.
type Candidate struct {
	Degree          string
	ExperienceYears float64
	Skills          []string
	Certifications  []string
	InterviewScore  *int
	LinkedIn        string
	Address         string
	Phone           string
}

type Result struct {
	TotalScore int       `json:"total_score"`
	Breakdown  Breakdown `json:"breakdown"`
}

const defaultRequiredTier = 2

type tier struct {
	keyword string
	level   int
}

// educationTiers is ordered from highest to lowest so the first hit wins.
var educationTiers = []tier{
	{keyword: "phd", level: 4},
	{keyword: "master", level: 3},
	{keyword: "bachelor", level: 2},
	{keyword: "diploma", level: 1},
	{keyword: "high school", level: 1},
}

func Calculate(c Candidate, req job.Requirement) Result {
	b := Breakdown{
		EducationMatch:       EducationMatch(c.Degree, req.Education),
		ExperienceMatch:      ExperienceMatch(c.ExperienceYears, req.MinExperienceYears),
		SkillsMatch:          containsMatch(c.Skills, req.Skills),
		CertificationsMatch:  containsMatch(c.Certifications, req.Certifications),
		InterviewPerformance: InterviewPerformance(c.InterviewScore),
		CultureAlignment:     CultureAlignment(c.LinkedIn, c.Address, c.Phone),
		Weights:              DefaultWeights,
	}

	return Result{TotalScore: Composite(b), Breakdown: b}
}

// Composite folds a breakdown into the rounded weighted total.
func Composite(b Breakdown) int {
	w := b.Weights
	total := b.EducationMatch*w.Education +
		b.ExperienceMatch*w.Experience +
		b.SkillsMatch*w.Skills +
		b.CertificationsMatch*w.Certifications +
		b.InterviewPerformance*w.Interview +
		b.CultureAlignment*w.Culture

	if math.IsNaN(total) {
		return 0
	}
	score := int(math.Round(total))
	return clampInt(score, 0, 100)
}

// DegreeTier maps a free-text degree to its ordinal tier, 0 when unknown.
func DegreeTier(degree string) int {
	d := strings.ToLower(strings.TrimSpace(degree))
	if d == "" {
		return 0
	}
	for _, t := range educationTiers {
		if strings.Contains(d, t.keyword) {
			return t.level
		}
	}
	return 0
}

func EducationMatch(degree, required string) float64 {
	requiredTier := DegreeTier(required)
	if requiredTier <= 0 {
		requiredTier = defaultRequiredTier
	}
	candidateTier := DegreeTier(degree)
	if candidateTier <= 0 {
		return 0
	}
	return math.Min(float64(candidateTier)/float64(requiredTier)*100, 100)
}

func ExperienceMatch(years, required float64) float64 {
	if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		years = 0
	}
	if math.IsNaN(required) || required <= 0 {
		return 100
	}
	if years == 0 {
		return 0
	}
	if years >= required*1.5 {
		return 100
	}
	return math.Min(years/required*100, 100)
}

func InterviewPerformance(score *int) float64 {
	if score == nil {
		return 0
	}
	return float64(clampInt(*score, 0, 100))
}

func CultureAlignment(indicators ...string) float64 {
	if len(indicators) == 0 {
		return 0
	}
	present := 0
	for _, v := range indicators {
		if strings.TrimSpace(v) != "" {
			present++
		}
	}
	return float64(present) / float64(len(indicators)) * 100
}

// containsMatch returns the share of required entries that appear as a
// case-insensitive substring of at least one candidate entry.
func containsMatch(have, required []string) float64 {
	wanted := make([]string, 0, len(required))
	for _, r := range required {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		wanted = append(wanted, r)
	}
	if len(wanted) == 0 {
		return 100
	}

	lowered := make([]string, 0, len(have))
	for _, h := range have {
		lowered = append(lowered, strings.ToLower(h))
	}

	matched := 0
	for _, r := range wanted {
		for _, h := range lowered {
			if strings.Contains(h, r) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(wanted)) * 100
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
