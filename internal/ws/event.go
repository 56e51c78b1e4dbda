package ws

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventApplicationSubmitted = "application_submitted"
	EventStatusChanged        = "application_status_changed"
	EventShortlistCreated     = "shortlist_created"
)

type Event struct {
	Type          string    `json:"type"`
	JobID         uuid.UUID `json:"job_id"`
	ApplicationID uuid.UUID `json:"application_id,omitempty"`
	ShortlistID   uuid.UUID `json:"shortlist_id,omitempty"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to,omitempty"`
	Actor         string    `json:"actor,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
