package selection

import (
	"sort"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/domain/scoring"
)

const (
	DefaultThreshold = 75
	MinThreshold     = 50
	MaxThreshold     = 100

	reviewFloor = 60
)

const (
	RecommendInterview = "RECOMMEND – Schedule Interview"
	RecommendReview    = "REVIEW – Consider for screening"
	RecommendHold      = "HOLD – Below threshold"
)

type Ranked struct {
	Application    application.Application `json:"application"`
	AIScore        int                     `json:"ai_score"`
	Breakdown      scoring.Breakdown       `json:"score_breakdown"`
	AutoSelected   bool                    `json:"auto_selected"`
	Recommendation string                  `json:"recommendation"`
}

// ThresholdInRange reports whether t lies in the operator-facing range. AutoSelect
// itself accepts any value.
func ThresholdInRange(t int) bool {
	return t >= MinThreshold && t <= MaxThreshold
}

// AutoSelect scores every candidate and returns them ordered by score, highest first.
// Equal scores keep their input order.
func AutoSelect(candidates []application.Application, req job.Requirement, threshold int) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		res := scoring.Calculate(c.Candidate(), req)

		r := Ranked{
			AIScore:        res.TotalScore,
			Breakdown:      res.Breakdown,
			AutoSelected:   res.TotalScore >= threshold,
			Recommendation: Recommendation(res.TotalScore, threshold),
		}

		score := res.TotalScore
		breakdown := res.Breakdown
		c.AIScore = &score
		c.ScoreBreakdown = &breakdown
		c.AutoSelected = r.AutoSelected
		c.Recommendation = r.Recommendation
		r.Application = c

		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AIScore > out[j].AIScore })
	return out
}

func Recommendation(score, threshold int) string {
	switch {
	case score >= threshold:
		return RecommendInterview
	case score >= reviewFloor:
		return RecommendReview
	default:
		return RecommendHold
	}
}

// Selected keeps only the auto-selected entries, preserving order.
func Selected(ranked []Ranked) []Ranked {
	out := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		if r.AutoSelected {
			out = append(out, r)
		}
	}
	return out
}
