// Package memory keeps the whole dataset in process and mirrors it to a JSON
// snapshot file after every mutation.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/metrics"
	"talent-track/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type state struct {
	Jobs         []job.Job                 `json:"jobs"`
	Applications []application.Application `json:"applications"`
	Shortlists   []application.Shortlist   `json:"shortlists"`
	Audit        []application.AuditEntry  `json:"audit"`
}

type Store struct {
	mu    sync.RWMutex
	state state

	path    string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ store.Store = (*Store)(nil)

// Open loads the snapshot at path if it exists. An empty path keeps the store
// purely in memory.
func Open(path string, logger *zap.Logger, m *metrics.Metrics) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		state:   emptyState(),
		path:    path,
		logger:  logger,
		metrics: m,
	}
	if path == "" {
		return s, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(b) == 0 {
		return s, nil
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	s.state = normalizeState(st)
	logger.Info("snapshot loaded",
		zap.String("path", path),
		zap.Int("jobs", len(s.state.Jobs)),
		zap.Int("applications", len(s.state.Applications)),
	)
	return s, nil
}

func emptyState() state {
	return state{
		Jobs:         []job.Job{},
		Applications: []application.Application{},
		Shortlists:   []application.Shortlist{},
		Audit:        []application.AuditEntry{},
	}
}

func normalizeState(st state) state {
	if st.Jobs == nil {
		st.Jobs = []job.Job{}
	}
	if st.Applications == nil {
		st.Applications = []application.Application{}
	}
	if st.Shortlists == nil {
		st.Shortlists = []application.Shortlist{}
	}
	if st.Audit == nil {
		st.Audit = []application.AuditEntry{}
	}
	return st
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) CreateJob(_ context.Context, j job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobIndex(j.ID) >= 0 {
		return fmt.Errorf("job %s: %w", j.ID, store.ErrDuplicate)
	}
	s.state.Jobs = append(s.state.Jobs, cloneJob(j))
	s.persistLocked()
	return nil
}

func (s *Store) UpdateJob(_ context.Context, j job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.jobIndex(j.ID)
	if i < 0 {
		return fmt.Errorf("job %s: %w", j.ID, store.ErrNotFound)
	}
	s.state.Jobs[i] = cloneJob(j)
	s.persistLocked()
	return nil
}

func (s *Store) GetJob(_ context.Context, id uuid.UUID) (job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.jobIndex(id)
	if i < 0 {
		return job.Job{}, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
	}
	return cloneJob(s.state.Jobs[i]), nil
}

func (s *Store) ListJobs(_ context.Context) ([]job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]job.Job, 0, len(s.state.Jobs))
	for _, j := range s.state.Jobs {
		out = append(out, cloneJob(j))
	}
	return out, nil
}

func (s *Store) CreateApplication(_ context.Context, a application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applicationIndex(a.ID) >= 0 {
		return fmt.Errorf("application %s: %w", a.ID, store.ErrDuplicate)
	}
	s.state.Applications = append(s.state.Applications, cloneApplication(a))
	s.persistLocked()
	return nil
}

func (s *Store) ModifyApplication(_ context.Context, id uuid.UUID, fn store.ModifyFunc) (application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.applicationIndex(id)
	if i < 0 {
		return application.Application{}, fmt.Errorf("application %s: %w", id, store.ErrNotFound)
	}
	a := cloneApplication(s.state.Applications[i])
	if err := fn(&a); err != nil {
		return application.Application{}, err
	}
	a.ID = id
	s.state.Applications[i] = cloneApplication(a)
	s.persistLocked()
	return a, nil
}

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.applicationIndex(id)
	if i < 0 {
		return application.Application{}, fmt.Errorf("application %s: %w", id, store.ErrNotFound)
	}
	return cloneApplication(s.state.Applications[i]), nil
}

func (s *Store) ListApplications(_ context.Context, f store.ApplicationFilter) ([]application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]application.Application, 0)
	for _, a := range s.state.Applications {
		if f.Match(a) {
			out = append(out, cloneApplication(a))
		}
	}
	return out, nil
}

func (s *Store) CreateShortlist(_ context.Context, sl application.Shortlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Shortlists {
		if existing.ID == sl.ID {
			return fmt.Errorf("shortlist %s: %w", sl.ID, store.ErrDuplicate)
		}
	}
	sl.Entries = append([]application.ShortlistEntry(nil), sl.Entries...)
	s.state.Shortlists = append([]application.Shortlist{sl}, s.state.Shortlists...)
	s.persistLocked()
	return nil
}

func (s *Store) GetShortlist(_ context.Context, id uuid.UUID) (application.Shortlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sl := range s.state.Shortlists {
		if sl.ID == id {
			sl.Entries = append([]application.ShortlistEntry(nil), sl.Entries...)
			return sl, nil
		}
	}
	return application.Shortlist{}, fmt.Errorf("shortlist %s: %w", id, store.ErrNotFound)
}

func (s *Store) ListShortlists(_ context.Context, jobID uuid.UUID) ([]application.Shortlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]application.Shortlist, 0)
	for _, sl := range s.state.Shortlists {
		if jobID != uuid.Nil && sl.JobID != jobID {
			continue
		}
		sl.Entries = append([]application.ShortlistEntry(nil), sl.Entries...)
		out = append(out, sl)
	}
	return out, nil
}

func (s *Store) AppendAudit(_ context.Context, e application.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Audit = append(s.state.Audit, e)
	s.persistLocked()
	return nil
}

func (s *Store) ListAudit(_ context.Context, f store.AuditFilter) ([]application.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]application.AuditEntry, 0)
	want := ""
	if f.ApplicationID != uuid.Nil {
		want = f.ApplicationID.String()
	}
	for _, e := range s.state.Audit {
		if want != "" {
			if id, _ := e.Details["application_id"].(string); id != want {
				continue
			}
		}
		out = append(out, e)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

func (s *Store) jobIndex(id uuid.UUID) int {
	for i := range s.state.Jobs {
		if s.state.Jobs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) applicationIndex(id uuid.UUID) int {
	for i := range s.state.Applications {
		if s.state.Applications[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full snapshot. Failures are logged and counted but
// never returned: the in-memory state stays authoritative.
func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}
	if err := writeAtomic(s.path, s.state); err != nil {
		s.metrics.SnapshotWriteFailed()
		s.logger.Error("snapshot write failed", zap.String("path", s.path), zap.Error(err))
	}
}

func writeAtomic(path string, st state) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
