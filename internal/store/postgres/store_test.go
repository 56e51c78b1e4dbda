package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"talent-track/internal/database"
	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/domain/scoring"
	"talent-track/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow replays values into Scan destinations by reflection.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d destinations, want %d", len(dest), len(r.values))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		dv.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func TestApplicationWhere(t *testing.T) {
	where, args := applicationWhere(store.ApplicationFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	jobID := uuid.New()
	yes := true
	where, args = applicationWhere(store.ApplicationFilter{JobID: jobID, Status: application.StatusOffer, AutoSelected: &yes})
	assert.Equal(t, " WHERE job_id = $1 AND status = $2 AND auto_selected = $3", where)
	assert.Equal(t, []any{jobID, "offer", true}, args)

	where, args = applicationWhere(store.ApplicationFilter{Status: application.StatusRejected})
	assert.Equal(t, " WHERE status = $1", where)
	assert.Equal(t, []any{"rejected"}, args)
}

func TestApplicationArgsScanRoundTrip(t *testing.T) {
	score := 88
	interview := 70
	offered := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	in := application.Application{
		ID:              uuid.New(),
		JobID:           uuid.New(),
		Name:            "Ada",
		Email:           "ada@example.com",
		ExperienceYears: 4.5,
		Skills:          []string{"Go"},
		Status:          application.StatusOffer,
		AIScore:         &score,
		ScoreBreakdown:  &scoring.Breakdown{EducationMatch: 100, Weights: scoring.DefaultWeights},
		InterviewScore:  &interview,
		Notes:           []application.Note{{Author: "lead", Text: "strong"}},
		Testing:         &application.Testing{Status: "completed"},
		CreatedAt:       offered.Add(-72 * time.Hour),
		OfferedAt:       &offered,
		UpdatedAt:       offered,
	}

	args, err := applicationArgs(in)
	require.NoError(t, err)
	require.Len(t, args, 23)

	values := make([]any, len(args))
	copy(values, args)
	values[11] = string(in.Status)

	out, err := scanApplication(fakeRow{values: values})
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Skills, out.Skills)
	assert.Equal(t, []string{}, decodeStrings(t, args[17]))
	assert.Equal(t, 88, *out.AIScore)
	assert.Equal(t, 100.0, out.ScoreBreakdown.EducationMatch)
	assert.Equal(t, "completed", out.Testing.Status)
	assert.Equal(t, in.Notes, out.Notes)
	assert.Equal(t, offered, *out.OfferedAt)
}

func decodeStrings(t *testing.T, raw any) []string {
	t.Helper()
	var out []string
	require.NoError(t, json.Unmarshal(raw.([]byte), &out))
	return out
}

func TestScanJobDefaults(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	j, err := scanJob(fakeRow{values: []any{
		id, "QA", "", "", "open", []byte(`{"skills":["selenium"]}`), []byte(nil), now, now,
	}})
	require.NoError(t, err)
	assert.Equal(t, job.StatusOpen, j.Status)
	assert.Equal(t, []string{"selenium"}, j.Requirement.Skills)
	assert.Equal(t, []job.Check{}, j.Mandatory)
}

func TestErrorMapping(t *testing.T) {
	id := uuid.New()
	assert.ErrorIs(t, wrapReadErr("job", id, pgx.ErrNoRows), store.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, wrapReadErr("job", id, other))

	assert.ErrorIs(t, wrapWriteErr("job", id, &pgconn.PgError{Code: uniqueViolation}), store.ErrDuplicate)
	assert.NoError(t, wrapWriteErr("job", id, nil))
}

type fakeTx struct {
	row       fakeRow
	queries   []string
	execArgs  [][]any
	committed bool
}

func (tx *fakeTx) Exec(_ context.Context, query string, args ...any) (int64, error) {
	tx.queries = append(tx.queries, query)
	tx.execArgs = append(tx.execArgs, args)
	return 1, nil
}

func (tx *fakeTx) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, errors.New("not supported")
}

func (tx *fakeTx) QueryRow(_ context.Context, query string, _ ...any) database.Row {
	tx.queries = append(tx.queries, query)
	return tx.row
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error { return nil }

// txDB only supports transactions.
type txDB struct {
	database.DB
	tx *fakeTx
}

func (db txDB) Begin(context.Context) (database.Tx, error) { return db.tx, nil }

func (db txDB) SQLDB() *sql.DB { return nil }

func TestModifyApplicationLocksRowInTransaction(t *testing.T) {
	in := application.Application{
		ID:     uuid.New(),
		JobID:  uuid.New(),
		Name:   "Ada",
		Status: application.StatusSubmitted,
		Notes:  []application.Note{},
	}
	args, err := applicationArgs(in)
	require.NoError(t, err)

	tx := &fakeTx{row: fakeRow{values: args}}
	s := New(txDB{tx: tx})

	out, err := s.ModifyApplication(context.Background(), in.ID, func(a *application.Application) error {
		a.Status = application.StatusRejected
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, out.Status)
	assert.True(t, tx.committed)

	require.Len(t, tx.queries, 2)
	assert.True(t, strings.HasSuffix(tx.queries[0], "FOR UPDATE"))
	assert.Equal(t, updateApplicationSQL, tx.queries[1])
	assert.Equal(t, "rejected", tx.execArgs[0][11])
}

func TestModifyApplicationAbortsWithoutWrite(t *testing.T) {
	tx := &fakeTx{row: fakeRow{err: pgx.ErrNoRows}}
	s := New(txDB{tx: tx})

	_, err := s.ModifyApplication(context.Background(), uuid.New(), func(*application.Application) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, tx.committed)
	assert.Len(t, tx.queries, 1)
}
