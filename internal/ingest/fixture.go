package ingest

import (
	"fmt"
	"os"
	"strings"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk import format. JSON files are accepted as well since
// yaml.v3 parses JSON documents.
type Fixture struct {
	Jobs []JobFixture `yaml:"jobs"`
}

type JobFixture struct {
	ID           string           `yaml:"id"`
	Title        string           `yaml:"title"`
	Department   string           `yaml:"department"`
	Location     string           `yaml:"location"`
	Status       string           `yaml:"status"`
	Requirement  job.Requirement  `yaml:"requirement"`
	Mandatory    []string         `yaml:"mandatory"`
	Applications []map[string]any `yaml:"applications"`
}

// Batch is a decoded fixture ready to be stored.
type Batch struct {
	Job          job.Job
	Applications []application.Application
	Skipped      []string
}

func LoadFile(path string) ([]Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]Batch, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	batches := make([]Batch, 0, len(f.Jobs))
	for i, jf := range f.Jobs {
		j, err := jf.toJob()
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}

		b := Batch{Job: j, Applications: make([]application.Application, 0, len(jf.Applications))}
		for k, raw := range jf.Applications {
			c, err := Normalize(raw)
			if err != nil {
				b.Skipped = append(b.Skipped, fmt.Sprintf("application %d: %v", k, err))
				continue
			}
			app := c.Application()
			if status, ok := raw["status"].(string); ok {
				if st, ok := application.ParseStatus(status); ok {
					app.Status = st
				}
			}
			b.Applications = append(b.Applications, app)
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (jf JobFixture) toJob() (job.Job, error) {
	j := job.Job{
		Title:       strings.TrimSpace(jf.Title),
		Department:  strings.TrimSpace(jf.Department),
		Location:    strings.TrimSpace(jf.Location),
		Status:      job.StatusOpen,
		Requirement: jf.Requirement,
		Mandatory:   make([]job.Check, 0, len(jf.Mandatory)),
	}
	if j.Title == "" {
		return job.Job{}, fmt.Errorf("title is required")
	}
	if jf.ID != "" {
		id, err := uuid.Parse(jf.ID)
		if err != nil {
			return job.Job{}, fmt.Errorf("invalid id %q: %w", jf.ID, err)
		}
		j.ID = id
	}
	if jf.Status != "" {
		st, ok := job.ParseStatus(jf.Status)
		if !ok {
			return job.Job{}, fmt.Errorf("invalid status %q", jf.Status)
		}
		j.Status = st
	}
	for _, m := range jf.Mandatory {
		check := job.Check(strings.ToLower(strings.TrimSpace(m)))
		if !check.Valid() {
			return job.Job{}, fmt.Errorf("unknown mandatory check %q", m)
		}
		j.Mandatory = append(j.Mandatory, check)
	}
	return j, nil
}
