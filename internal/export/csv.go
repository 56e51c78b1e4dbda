package export

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"talent-track/internal/domain/application"
)

const (
	shortlistHeader = "Name,Email,Score"
	auditHeader     = "id,action,details,ts,user"
)

// ShortlistCSV writes one fully quoted row per entry.
func ShortlistCSV(s application.Shortlist) string {
	var b strings.Builder
	b.WriteString(shortlistHeader)
	b.WriteString("\n")
	for _, e := range s.Entries {
		writeQuotedRow(&b, e.Name, e.Email, strconv.Itoa(e.Score))
	}
	return b.String()
}

// AuditCSV writes the audit trail with details encoded as a JSON string.
func AuditCSV(entries []application.AuditEntry) string {
	var b strings.Builder
	b.WriteString(auditHeader)
	b.WriteString("\n")
	for _, e := range entries {
		details := "{}"
		if len(e.Details) > 0 {
			if raw, err := json.Marshal(e.Details); err == nil {
				details = string(raw)
			}
		}
		writeQuotedRow(&b, e.ID.String(), e.Action, details, e.Timestamp.UTC().Format(time.RFC3339), e.Actor)
	}
	return b.String()
}

func writeQuotedRow(b *strings.Builder, values ...string) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quote(v))
	}
	b.WriteString("\n")
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
