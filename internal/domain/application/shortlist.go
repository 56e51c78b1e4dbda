package application

import (
	"time"

	"github.com/google/uuid"
)

type ShortlistEntry struct {
	ApplicationID uuid.UUID `json:"application_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Score         int       `json:"score"`
}

// Shortlist is never edited after creation; a new one replaces it in listings.
type Shortlist struct {
	ID        uuid.UUID        `json:"id"`
	JobID     uuid.UUID        `json:"job_id"`
	Threshold int              `json:"threshold"`
	Entries   []ShortlistEntry `json:"entries"`
	CreatedBy string           `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
}

type AuditEntry struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"ts"`
	Actor     string         `json:"user"`
}
