package recruitment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"

	"github.com/google/uuid"
)

type selectionKeyInput struct {
	Education      string               `json:"education"`
	MinExperience  float64              `json:"min_experience"`
	Skills         []string             `json:"skills"`
	Certifications []string             `json:"certifications"`
	Threshold      int                  `json:"threshold"`
	Applications   []selectionKeyMember `json:"applications"`
}

type selectionKeyMember struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updated_at"`
}

func normalizeKeyValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

func normalizeKeyList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = normalizeKeyValue(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SelectionCacheKey fingerprints everything an auto-select result depends on.
// Any edit to an application bumps its UpdatedAt and therefore the key.
func SelectionCacheKey(jobID uuid.UUID, req job.Requirement, threshold int, apps []application.Application) string {
	in := selectionKeyInput{
		Education:      normalizeKeyValue(req.Education),
		MinExperience:  req.MinExperienceYears,
		Skills:         normalizeKeyList(req.Skills),
		Certifications: normalizeKeyList(req.Certifications),
		Threshold:      threshold,
		Applications:   make([]selectionKeyMember, 0, len(apps)),
	}
	for _, a := range apps {
		in.Applications = append(in.Applications, selectionKeyMember{
			ID:        a.ID.String(),
			UpdatedAt: a.UpdatedAt.UTC().Truncate(time.Microsecond).UnixMicro(),
		})
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return SelectionCachePrefix(jobID) + hex.EncodeToString(sum[:])
}

func SelectionCachePrefix(jobID uuid.UUID) string {
	return "selection:" + jobID.String() + ":"
}
