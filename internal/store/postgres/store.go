// Package postgres implements store.Store on top of database.DB. Nested
// collections (skills, notes, shortlist entries, audit details) are kept in
// JSONB columns.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"talent-track/internal/database"
	pgdb "talent-track/internal/database/postgres"
	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type Store struct {
	db database.DB
}

var _ store.Store = (*Store)(nil)

func New(db database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateJob(ctx context.Context, j job.Job) error {
	req, err := json.Marshal(j.Requirement)
	if err != nil {
		return err
	}
	mandatory, err := marshalList(j.Mandatory)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO jobs (id, title, department, location, status, requirement, mandatory, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		j.ID, j.Title, j.Department, j.Location, string(j.Status), req, mandatory, j.CreatedAt, j.UpdatedAt,
	)
	return wrapWriteErr("job", j.ID, err)
}

func (s *Store) UpdateJob(ctx context.Context, j job.Job) error {
	req, err := json.Marshal(j.Requirement)
	if err != nil {
		return err
	}
	mandatory, err := marshalList(j.Mandatory)
	if err != nil {
		return err
	}
	n, err := s.db.Exec(ctx, `
UPDATE jobs SET title = $2, department = $3, location = $4, status = $5, requirement = $6, mandatory = $7, updated_at = $8
WHERE id = $1`,
		j.ID, j.Title, j.Department, j.Location, string(j.Status), req, mandatory, j.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", j.ID, store.ErrNotFound)
	}
	return nil
}

const jobColumns = `id, title, department, location, status, requirement, mandatory, created_at, updated_at`

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (job.Job, error) {
	row := s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		return job.Job{}, wrapReadErr("job", id, err)
	}
	return j, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]job.Job, error) {
	rows, err := s.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j         job.Job
		status    string
		req       []byte
		mandatory []byte
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &status, &req, &mandatory, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	if err := unmarshalOptional(req, &j.Requirement); err != nil {
		return job.Job{}, fmt.Errorf("decode requirement: %w", err)
	}
	j.Mandatory = []job.Check{}
	if err := unmarshalOptional(mandatory, &j.Mandatory); err != nil {
		return job.Job{}, fmt.Errorf("decode mandatory: %w", err)
	}
	return j, nil
}

const applicationColumns = `id, job_id, name, email, degree, experience_years, skills, certifications, linkedin, address, phone,
	status, ai_score, score_breakdown, auto_selected, recommendation, interview_score, screening_errors, notes, testing,
	created_at, offered_at, updated_at`

func (s *Store) CreateApplication(ctx context.Context, a application.Application) error {
	args, err := applicationArgs(a)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO applications (`+applicationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		args...,
	)
	return wrapWriteErr("application", a.ID, err)
}

const updateApplicationSQL = `
UPDATE applications SET
	job_id = $2, name = $3, email = $4, degree = $5, experience_years = $6, skills = $7, certifications = $8,
	linkedin = $9, address = $10, phone = $11, status = $12, ai_score = $13, score_breakdown = $14,
	auto_selected = $15, recommendation = $16, interview_score = $17, screening_errors = $18, notes = $19,
	testing = $20, created_at = $21, offered_at = $22, updated_at = $23
WHERE id = $1`

// ModifyApplication locks the row with SELECT ... FOR UPDATE for the duration
// of fn.
func (s *Store) ModifyApplication(ctx context.Context, id uuid.UUID, fn store.ModifyFunc) (application.Application, error) {
	var out application.Application
	err := pgdb.WithTx(ctx, s.db, func(tx database.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
		a, err := scanApplication(row)
		if err != nil {
			return wrapReadErr("application", id, err)
		}
		if err := fn(&a); err != nil {
			return err
		}
		a.ID = id
		args, err := applicationArgs(a)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, updateApplicationSQL, args...); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return application.Application{}, err
	}
	return out, nil
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (application.Application, error) {
	row := s.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		return application.Application{}, wrapReadErr("application", id, err)
	}
	return a, nil
}

func (s *Store) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]application.Application, error) {
	where, args := applicationWhere(f)
	rows, err := s.db.Query(ctx, `SELECT `+applicationColumns+` FROM applications`+where+` ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func applicationWhere(f store.ApplicationFilter) (string, []any) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if f.JobID != uuid.Nil {
		args = append(args, f.JobID)
		conds = append(conds, fmt.Sprintf("job_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.AutoSelected != nil {
		args = append(args, *f.AutoSelected)
		conds = append(conds, fmt.Sprintf("auto_selected = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func applicationArgs(a application.Application) ([]any, error) {
	skills, err := marshalList(a.Skills)
	if err != nil {
		return nil, err
	}
	certs, err := marshalList(a.Certifications)
	if err != nil {
		return nil, err
	}
	screening, err := marshalList(a.ScreeningErrors)
	if err != nil {
		return nil, err
	}
	notes, err := marshalList(a.Notes)
	if err != nil {
		return nil, err
	}
	var breakdown, testing []byte
	if a.ScoreBreakdown != nil {
		if breakdown, err = json.Marshal(a.ScoreBreakdown); err != nil {
			return nil, err
		}
	}
	if a.Testing != nil {
		if testing, err = json.Marshal(a.Testing); err != nil {
			return nil, err
		}
	}
	return []any{
		a.ID, a.JobID, a.Name, a.Email, a.Degree, a.ExperienceYears, skills, certs, a.LinkedIn, a.Address, a.Phone,
		string(a.Status), a.AIScore, breakdown, a.AutoSelected, a.Recommendation, a.InterviewScore, screening, notes, testing,
		a.CreatedAt, a.OfferedAt, a.UpdatedAt,
	}, nil
}

func scanApplication(row database.Row) (application.Application, error) {
	var (
		a                               application.Application
		status                          string
		skills, certs, screening, notes []byte
		breakdown, testing              []byte
	)
	err := row.Scan(
		&a.ID, &a.JobID, &a.Name, &a.Email, &a.Degree, &a.ExperienceYears, &skills, &certs, &a.LinkedIn, &a.Address, &a.Phone,
		&status, &a.AIScore, &breakdown, &a.AutoSelected, &a.Recommendation, &a.InterviewScore, &screening, &notes, &testing,
		&a.CreatedAt, &a.OfferedAt, &a.UpdatedAt,
	)
	if err != nil {
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	a.Notes = []application.Note{}

	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{skills, &a.Skills},
		{certs, &a.Certifications},
		{screening, &a.ScreeningErrors},
		{notes, &a.Notes},
	} {
		if err := unmarshalOptional(f.raw, f.dst); err != nil {
			return application.Application{}, fmt.Errorf("decode application %s: %w", a.ID, err)
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &a.ScoreBreakdown); err != nil {
			return application.Application{}, fmt.Errorf("decode score breakdown: %w", err)
		}
	}
	if len(testing) > 0 {
		if err := json.Unmarshal(testing, &a.Testing); err != nil {
			return application.Application{}, fmt.Errorf("decode testing: %w", err)
		}
	}
	return a, nil
}

func (s *Store) CreateShortlist(ctx context.Context, sl application.Shortlist) error {
	entries, err := marshalList(sl.Entries)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO shortlists (id, job_id, threshold, entries, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		sl.ID, sl.JobID, sl.Threshold, entries, sl.CreatedBy, sl.CreatedAt,
	)
	return wrapWriteErr("shortlist", sl.ID, err)
}

const shortlistColumns = `id, job_id, threshold, entries, created_by, created_at`

func (s *Store) GetShortlist(ctx context.Context, id uuid.UUID) (application.Shortlist, error) {
	row := s.db.QueryRow(ctx, `SELECT `+shortlistColumns+` FROM shortlists WHERE id = $1`, id)
	sl, err := scanShortlist(row)
	if err != nil {
		return application.Shortlist{}, wrapReadErr("shortlist", id, err)
	}
	return sl, nil
}

func (s *Store) ListShortlists(ctx context.Context, jobID uuid.UUID) ([]application.Shortlist, error) {
	var (
		rows database.Rows
		err  error
	)
	if jobID == uuid.Nil {
		rows, err = s.db.Query(ctx, `SELECT `+shortlistColumns+` FROM shortlists ORDER BY seq DESC`)
	} else {
		rows, err = s.db.Query(ctx, `SELECT `+shortlistColumns+` FROM shortlists WHERE job_id = $1 ORDER BY seq DESC`, jobID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Shortlist, 0)
	for rows.Next() {
		sl, err := scanShortlist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanShortlist(row database.Row) (application.Shortlist, error) {
	var (
		sl      application.Shortlist
		entries []byte
	)
	if err := row.Scan(&sl.ID, &sl.JobID, &sl.Threshold, &entries, &sl.CreatedBy, &sl.CreatedAt); err != nil {
		return application.Shortlist{}, err
	}
	sl.Entries = []application.ShortlistEntry{}
	if err := unmarshalOptional(entries, &sl.Entries); err != nil {
		return application.Shortlist{}, fmt.Errorf("decode shortlist entries: %w", err)
	}
	return sl, nil
}

func (s *Store) AppendAudit(ctx context.Context, e application.AuditEntry) error {
	details := []byte("{}")
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = b
	}
	_, err := s.db.Exec(ctx, `INSERT INTO audit_log (id, action, details, ts, actor) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Action, details, e.Timestamp, e.Actor,
	)
	return wrapWriteErr("audit entry", e.ID, err)
}

// ListAudit selects the newest Limit entries and returns them oldest first.
func (s *Store) ListAudit(ctx context.Context, f store.AuditFilter) ([]application.AuditEntry, error) {
	query := `SELECT id, action, details, ts, actor FROM audit_log`
	args := make([]any, 0, 2)
	if f.ApplicationID != uuid.Nil {
		args = append(args, f.ApplicationID.String())
		query += ` WHERE details->>'application_id' = $1`
	}
	query += ` ORDER BY seq DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.AuditEntry, 0)
	for rows.Next() {
		var (
			e       application.AuditEntry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.Action, &details, &e.Timestamp, &e.Actor); err != nil {
			return nil, err
		}
		if err := unmarshalOptional(details, &e.Details); err != nil {
			return nil, fmt.Errorf("decode audit details: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

func marshalList[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}

func unmarshalOptional(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func wrapReadErr(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return err
}

func wrapWriteErr(kind string, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrDuplicate)
	}
	return err
}
