package application

import (
	"strings"
	"time"

	"talent-track/internal/domain/scoring"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSubmitted      Status = "submitted"
	StatusManualReview   Status = "manual-review"
	StatusScreening      Status = "screening"
	StatusTestInvited    Status = "test-invited"
	StatusPhoneInterview Status = "phone-interview"
	StatusInterview      Status = "interview"
	StatusOffer          Status = "offer"
	StatusRejected       Status = "rejected"
)

// Statuses lists every status an application can hold.
var Statuses = []Status{
	StatusSubmitted,
	StatusManualReview,
	StatusScreening,
	StatusTestInvited,
	StatusPhoneInterview,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusOffer || s == StatusRejected
}

// IsInterviewing groups both interview stages.
func (s Status) IsInterviewing() bool {
	return s == StatusPhoneInterview || s == StatusInterview
}

type Note struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Testing is owned by the assessment provider; the pipeline only reads its presence.
type Testing struct {
	Status      string         `json:"status"`
	InvitedAt   *time.Time     `json:"invited_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Results     map[string]any `json:"results,omitempty"`
}

type Application struct {
	ID              uuid.UUID `json:"id"`
	JobID           uuid.UUID `json:"job_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Degree          string    `json:"degree"`
	ExperienceYears float64   `json:"experience_years"`
	Skills          []string  `json:"skills"`
	Certifications  []string  `json:"certifications"`
	LinkedIn        string    `json:"linkedin"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone"`

	Status          Status             `json:"status"`
	AIScore         *int               `json:"ai_score,omitempty"`
	ScoreBreakdown  *scoring.Breakdown `json:"score_breakdown,omitempty"`
	AutoSelected    bool               `json:"auto_selected"`
	Recommendation  string             `json:"recommendation,omitempty"`
	InterviewScore  *int               `json:"interview_score,omitempty"`
	ScreeningErrors []string           `json:"screening_errors,omitempty"`
	Notes           []Note             `json:"notes"`
	Testing         *Testing           `json:"testing,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	OfferedAt *time.Time `json:"offered_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Candidate projects the application onto the scoring input.
func (a Application) Candidate() scoring.Candidate {
	return scoring.Candidate{
		Degree:          a.Degree,
		ExperienceYears: a.ExperienceYears,
		Skills:          a.Skills,
		Certifications:  a.Certifications,
		InterviewScore:  a.InterviewScore,
		LinkedIn:        a.LinkedIn,
		Address:         a.Address,
		Phone:           a.Phone,
	}
}

// InterviewScoreFromRubric converts a 1-10 rubric rating to the 0-100 scale.
func InterviewScoreFromRubric(rating int) (int, bool) {
	if rating < 1 || rating > 10 {
		return 0, false
	}
	return rating * 10, true
}
