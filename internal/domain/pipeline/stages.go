package pipeline

import "talent-track/internal/domain/application"

// Stage is one step of the suggested reviewer workflow. Stages guide the UI;
// Transition never enforces them.
type Stage string

const (
	StageNew         Stage = "New"
	StageAIScreening Stage = "AI Screening"
	StageTest        Stage = "Test"
	StageInterview   Stage = "Interview"
	StageOffer       Stage = "Offer"
	StageClosed      Stage = "Closed"
)

var SuggestedStages = []Stage{StageNew, StageAIScreening, StageTest, StageInterview, StageOffer}

func SuggestedStage(app application.Application) Stage {
	switch app.Status {
	case application.StatusSubmitted, application.StatusManualReview:
		return StageNew
	case application.StatusScreening:
		if app.Testing != nil {
			return StageTest
		}
		return StageAIScreening
	case application.StatusTestInvited:
		return StageTest
	case application.StatusPhoneInterview, application.StatusInterview:
		return StageInterview
	case application.StatusOffer:
		return StageOffer
	default:
		return StageClosed
	}
}

// NextSuggested returns the status a reviewer would normally move the
// application to next. It reports false for terminal statuses and while a test
// invitation is still awaiting results.
func NextSuggested(app application.Application) (application.Status, bool) {
	switch SuggestedStage(app) {
	case StageNew:
		return application.StatusScreening, true
	case StageAIScreening:
		return application.StatusTestInvited, true
	case StageTest:
		if app.Testing != nil && app.Testing.CompletedAt != nil {
			return application.StatusInterview, true
		}
		return "", false
	case StageInterview:
		return application.StatusOffer, true
	default:
		return "", false
	}
}
