// Package pipeline governs application status changes. Transitions are pure:
// they return the updated application together with the side effects the caller
// is expected to carry out (audit append, outbound notification).
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"talent-track/internal/domain/application"
)

var (
	ErrUnknownStatus    = errors.New("unknown application status")
	ErrValidationFailed = errors.New("mandatory requirements not met")
)

const (
	DefaultRejectionReason = "Rejected by reviewer"
	SystemActor            = "system"

	ActionStatusChange = "status_change"
	ActionSubmitted    = "application_submitted"
)

type TemplateType string

const (
	TemplateApplicationReceived    TemplateType = "APPLICATION_RECEIVED"
	TemplateApplicationShortlisted TemplateType = "APPLICATION_SHORTLISTED"
	TemplateInterviewScheduled     TemplateType = "INTERVIEW_SCHEDULED"
	TemplateOfferExtended          TemplateType = "OFFER_EXTENDED"
	TemplateRejection              TemplateType = "REJECTION"
)

// statusTemplates has no entry for statuses that send nothing.
var statusTemplates = map[application.Status]TemplateType{
	application.StatusPhoneInterview: TemplateInterviewScheduled,
	application.StatusInterview:      TemplateInterviewScheduled,
	application.StatusOffer:          TemplateOfferExtended,
	application.StatusRejected:       TemplateRejection,
}

func TemplateFor(status application.Status) (TemplateType, bool) {
	t, ok := statusTemplates[status]
	return t, ok
}

type Input struct {
	Actor string
	Note  string
	At    time.Time
}

type AuditIntent struct {
	Action    string
	Details   map[string]any
	Timestamp time.Time
	Actor     string
}

type NotificationIntent struct {
	To           string
	TemplateType TemplateType
	Data         map[string]string
}

// Effects are the side effects a transition asks its caller to perform.
type Effects struct {
	Audit        AuditIntent
	Notification *NotificationIntent
}

func Transition(app application.Application, target application.Status, in Input) (application.Application, Effects, error) {
	status, ok := application.ParseStatus(string(target))
	if !ok {
		return app, Effects{}, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}

	at := in.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		actor = SystemActor
	}
	note := strings.TrimSpace(in.Note)

	from := app.Status
	app.Status = status
	app.UpdatedAt = at

	switch status {
	case application.StatusRejected:
		reason := note
		if reason == "" {
			reason = DefaultRejectionReason
		}
		app.ScreeningErrors = []string{reason}
	case application.StatusOffer:
		if app.OfferedAt == nil {
			offered := at
			app.OfferedAt = &offered
		}
	case application.StatusTestInvited:
		if app.Testing == nil {
			invited := at
			app.Testing = &application.Testing{Status: "invited", InvitedAt: &invited}
		}
	}

	details := map[string]any{
		"application_id": app.ID.String(),
		"from":           string(from),
		"to":             string(status),
	}
	if note != "" {
		details["note"] = note
	}

	eff := Effects{
		Audit: AuditIntent{
			Action:    ActionStatusChange,
			Details:   details,
			Timestamp: at,
			Actor:     actor,
		},
	}

	if tmpl, ok := TemplateFor(status); ok {
		eff.Notification = notificationFor(app, tmpl, note)
	}

	return app, eff, nil
}

func notificationFor(app application.Application, tmpl TemplateType, note string) *NotificationIntent {
	to := strings.TrimSpace(app.Email)
	if to == "" {
		return nil
	}
	data := map[string]string{
		"candidateName": app.Name,
		"status":        string(app.Status),
	}
	if note != "" {
		data["note"] = note
	}
	return &NotificationIntent{To: to, TemplateType: tmpl, Data: data}
}

// Shortlisted builds the notification sent when an application lands on a shortlist.
func Shortlisted(app application.Application) *NotificationIntent {
	return notificationFor(app, TemplateApplicationShortlisted, "")
}
