package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Check names a job-defined mandatory field evaluated when an application is submitted.
type Check string

const (
	CheckEducation      Check = "education"
	CheckExperience     Check = "experience"
	CheckSkills         Check = "skills"
	CheckCertifications Check = "certifications"
	CheckLinkedIn       Check = "linkedin"
	CheckAddress        Check = "address"
	CheckPhone          Check = "phone"
)

var knownChecks = map[Check]struct{}{
	CheckEducation:      {},
	CheckExperience:     {},
	CheckSkills:         {},
	CheckCertifications: {},
	CheckLinkedIn:       {},
	CheckAddress:        {},
	CheckPhone:          {},
}

func (c Check) Valid() bool {
	_, ok := knownChecks[c]
	return ok
}

// Requirement is the target profile candidates are scored against.
type Requirement struct {
	Education          string   `json:"education" yaml:"education" mapstructure:"education"`
	MinExperienceYears float64  `json:"min_experience_years" yaml:"min_experience_years" mapstructure:"min_experience_years"`
	Skills             []string `json:"skills" yaml:"skills" mapstructure:"skills"`
	Certifications     []string `json:"certifications" yaml:"certifications" mapstructure:"certifications"`
}

type Job struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Department  string      `json:"department"`
	Location    string      `json:"location"`
	Status      Status      `json:"status"`
	Requirement Requirement `json:"requirement"`
	Mandatory   []Check     `json:"mandatory"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (j Job) IsOpen() bool {
	return j.Status == StatusOpen || j.Status == ""
}

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusClosed:
		return StatusClosed, true
	default:
		return "", false
	}
}
