// Package store defines the persistence ports of the recruitment service.
// Implementations live in the memory and postgres subpackages.
package store

import (
	"context"
	"errors"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type ApplicationFilter struct {
	JobID        uuid.UUID
	Status       application.Status
	AutoSelected *bool
}

func (f ApplicationFilter) Match(a application.Application) bool {
	if f.JobID != uuid.Nil && a.JobID != f.JobID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.AutoSelected != nil && a.AutoSelected != *f.AutoSelected {
		return false
	}
	return true
}

type AuditFilter struct {
	ApplicationID uuid.UUID
	Limit         int
}

type JobStore interface {
	CreateJob(ctx context.Context, j job.Job) error
	UpdateJob(ctx context.Context, j job.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (job.Job, error)
	ListJobs(ctx context.Context) ([]job.Job, error)
}

// ModifyFunc edits an application in place. Returning an error aborts the
// modification and nothing is written.
type ModifyFunc func(a *application.Application) error

// ApplicationStore lists applications in creation order.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, a application.Application) error
	// ModifyApplication reads, edits and writes one application with no other
	// writer of that application in between.
	ModifyApplication(ctx context.Context, id uuid.UUID, fn ModifyFunc) (application.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (application.Application, error)
	ListApplications(ctx context.Context, f ApplicationFilter) ([]application.Application, error)
}

// ShortlistStore is prepend-only: listings are newest first and shortlists
// are never updated.
type ShortlistStore interface {
	CreateShortlist(ctx context.Context, s application.Shortlist) error
	GetShortlist(ctx context.Context, id uuid.UUID) (application.Shortlist, error)
	ListShortlists(ctx context.Context, jobID uuid.UUID) ([]application.Shortlist, error)
}

// AuditStore lists entries oldest first.
type AuditStore interface {
	AppendAudit(ctx context.Context, e application.AuditEntry) error
	ListAudit(ctx context.Context, f AuditFilter) ([]application.AuditEntry, error)
}

type Store interface {
	JobStore
	ApplicationStore
	ShortlistStore
	AuditStore

	Ping(ctx context.Context) error
	Close() error
}
