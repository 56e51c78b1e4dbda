package recruitment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/domain/pipeline"
	"talent-track/internal/domain/selection"
	"talent-track/internal/ingest"
	"talent-track/internal/notification"
	"talent-track/internal/store"
	"talent-track/internal/store/memory"
	"talent-track/internal/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (n *recordingNotifier) Enqueue(msg notification.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return true
}

func (n *recordingNotifier) templates() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.TemplateType)
	}
	return out
}

type recordingEvents struct {
	events []ws.Event
}

func (e *recordingEvents) Publish(evt ws.Event) { e.events = append(e.events, evt) }

type mapCache struct {
	data    map[string][]byte
	deleted []string
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *mapCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	c.deleted = append(c.deleted, pattern)
	return nil
}

type fixture struct {
	svc      *Service
	notifier *recordingNotifier
	events   *recordingEvents
	cache    *mapCache
}

// tickingClock advances one minute per call so every write gets a distinct UpdatedAt.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := memory.Open("", nil, nil)
	require.NoError(t, err)
	return newFixtureOn(st)
}

func newFixtureOn(st store.Store) fixture {
	f := fixture{notifier: &recordingNotifier{}, events: &recordingEvents{}, cache: newMapCache()}
	f.svc = NewService(Deps{
		Store:     st,
		Cache:     f.cache,
		Notifier:  f.notifier,
		Events:    f.events,
		Now:       tickingClock(),
		Threshold: selection.DefaultThreshold,
	})
	return f
}

func (f fixture) backendJob(t *testing.T) job.Job {
	t.Helper()
	j, err := f.svc.CreateJob(context.Background(), JobInput{
		Title: "Backend Engineer",
		Requirement: job.Requirement{
			Education:          "Bachelor",
			MinExperienceYears: 3,
			Skills:             []string{"Go", "PostgreSQL"},
		},
		Mandatory: []string{"skills"},
	})
	require.NoError(t, err)
	return j
}

func strongCandidate() map[string]any {
	return map[string]any{
		"applicant": map[string]any{
			"name":       "Ada Lovelace",
			"email":      "ada@example.com",
			"degree":     "Master of Science",
			"experience": "6",
			"skills":     "Go, PostgreSQL, Redis",
			"linkedin":   "https://linkedin.com/in/ada",
			"address":    "London",
			"phone":      "+44 20 0000",
		},
	}
}

func weakCandidate() map[string]any {
	return map[string]any{
		"name":   "Bob",
		"email":  "bob@example.com",
		"skills": []any{"Go"},
	}
}

func TestCreateJobValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateJob(ctx, JobInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreateJob(ctx, JobInput{Title: "SRE", Mandatory: []string{"blood-type"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	j, err := f.svc.CreateJob(ctx, JobInput{Title: "SRE", Mandatory: []string{" Phone "}})
	require.NoError(t, err)
	assert.Equal(t, job.StatusOpen, j.Status)
	assert.Equal(t, []job.Check{job.CheckPhone}, j.Mandatory)
}

func TestSubmitApplicationRunsEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)

	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{Actor: "portal"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusSubmitted, app.Status)
	assert.Equal(t, j.ID, app.JobID)
	assert.Equal(t, 6.0, app.ExperienceYears)

	require.Len(t, f.notifier.msgs, 1)
	msg := f.notifier.msgs[0]
	assert.Equal(t, string(pipeline.TemplateApplicationReceived), msg.TemplateType)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Backend Engineer", msg.Data["jobTitle"])

	audit, err := f.svc.Audit(ctx, app.ID, 0)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, pipeline.ActionSubmitted, audit[0].Action)
	assert.Equal(t, "portal", audit[0].Actor)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, ws.EventApplicationSubmitted, f.events.events[0].Type)
}

func TestSubmitApplicationMandatoryChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)

	_, err := f.svc.SubmitApplication(ctx, j.ID, weakCandidate(), SubmitOptions{})
	require.ErrorIs(t, err, ErrValidationFailed)
	var verr *pipeline.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"missing required skills: PostgreSQL"}, verr.Failures)

	apps, err := f.svc.ListApplications(ctx, ApplicationQuery{JobID: j.ID})
	require.NoError(t, err)
	assert.Empty(t, apps)

	app, err := f.svc.SubmitApplication(ctx, j.ID, weakCandidate(), SubmitOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, application.StatusManualReview, app.Status)
	assert.Equal(t, verr.Failures, app.ScreeningErrors)
}

func TestSubmitApplicationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)

	_, err := f.svc.SubmitApplication(ctx, uuid.New(), strongCandidate(), SubmitOptions{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SubmitApplication(ctx, j.ID, map[string]any{}, SubmitOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.SetJobStatus(ctx, j.ID, "closed")
	require.NoError(t, err)
	_, err = f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestChangeStatusRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)

	updated, err := f.svc.ChangeStatus(ctx, app.ID, StatusChange{Status: "rejected", Actor: "hr@example.com"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, updated.Status)
	assert.Equal(t, []string{pipeline.DefaultRejectionReason}, updated.ScreeningErrors)

	assert.Equal(t, []string{
		string(pipeline.TemplateApplicationReceived),
		string(pipeline.TemplateRejection),
	}, f.notifier.templates())
	assert.Equal(t, "Backend Engineer", f.notifier.msgs[1].Data["jobTitle"])

	audit, err := f.svc.Audit(ctx, app.ID, 0)
	require.NoError(t, err)
	require.Len(t, audit, 2)
	last := audit[1]
	assert.Equal(t, pipeline.ActionStatusChange, last.Action)
	assert.Equal(t, "submitted", last.Details["from"])
	assert.Equal(t, "rejected", last.Details["to"])
	assert.Equal(t, "hr@example.com", last.Actor)

	evt := f.events.events[len(f.events.events)-1]
	assert.Equal(t, ws.EventStatusChanged, evt.Type)
	assert.Equal(t, "submitted", evt.From)
	assert.Equal(t, "rejected", evt.To)
}

func TestChangeStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, app.ID, StatusChange{Status: "hired"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ChangeStatus(ctx, uuid.New(), StatusChange{Status: "offer"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddNoteAndInterview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)

	_, err = f.svc.AddNote(ctx, app.ID, "lead", " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	noted, err := f.svc.AddNote(ctx, app.ID, "lead", "strong systems background")
	require.NoError(t, err)
	require.Len(t, noted.Notes, 1)
	assert.Equal(t, "lead", noted.Notes[0].Author)

	_, err = f.svc.RecordInterview(ctx, app.ID, 11, "lead")
	assert.ErrorIs(t, err, ErrInvalidInput)

	scored, err := f.svc.RecordInterview(ctx, app.ID, 8, "lead")
	require.NoError(t, err)
	require.NotNil(t, scored.InterviewScore)
	assert.Equal(t, 80, *scored.InterviewScore)
}

func TestScoreApplicationStoresResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)

	res, err := f.svc.ScoreApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, res.AIScore)
	assert.True(t, res.AutoSelected)
	assert.Equal(t, selection.RecommendInterview, res.Recommendation)

	stored, err := f.svc.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AIScore)
	assert.Equal(t, 85, *stored.AIScore)
	assert.True(t, stored.AutoSelected)
}

func TestAutoSelectCachesByFingerprint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	strong, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)
	_, err = f.svc.SubmitApplication(ctx, j.ID, weakCandidate(), SubmitOptions{Force: true})
	require.NoError(t, err)

	first, err := f.svc.AutoSelect(ctx, j.ID, nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, selection.DefaultThreshold, first.Threshold)
	require.Len(t, first.Ranked, 2)
	assert.Equal(t, strong.ID, first.Ranked[0].Application.ID)
	assert.Equal(t, 1, first.Selected)

	second, err := f.svc.AutoSelect(ctx, j.ID, nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Ranked[0].AIScore, second.Ranked[0].AIScore)

	_, err = f.svc.ChangeStatus(ctx, strong.ID, StatusChange{Status: "screening"})
	require.NoError(t, err)
	third, err := f.svc.AutoSelect(ctx, j.ID, nil)
	require.NoError(t, err)
	assert.False(t, third.Cached)

	lower := 50
	fourth, err := f.svc.AutoSelect(ctx, j.ID, &lower)
	require.NoError(t, err)
	assert.False(t, fourth.Cached)
	assert.Equal(t, 50, fourth.Threshold)

	_, err = f.svc.SetJobStatus(ctx, j.ID, "closed")
	require.NoError(t, err)
	assert.Contains(t, f.cache.deleted, SelectionCachePrefix(j.ID)+"*")
	assert.Empty(t, f.cache.data)
}

func TestAutoSelectRejectsOutOfRangeThreshold(t *testing.T) {
	f := newFixture(t)
	j := f.backendJob(t)
	for _, v := range []int{49, 101} {
		_, err := f.svc.AutoSelect(context.Background(), j.ID, &v)
		assert.ErrorIs(t, err, ErrInvalidInput, "threshold %d", v)
	}
}

func TestCreateShortlistNotifiesSelected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	strong, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)
	_, err = f.svc.SubmitApplication(ctx, j.ID, weakCandidate(), SubmitOptions{Force: true})
	require.NoError(t, err)

	sl, err := f.svc.CreateShortlist(ctx, j.ID, nil, "hr@example.com")
	require.NoError(t, err)
	require.Len(t, sl.Entries, 1)
	assert.Equal(t, strong.ID, sl.Entries[0].ApplicationID)
	assert.Equal(t, 85, sl.Entries[0].Score)
	assert.Equal(t, "hr@example.com", sl.CreatedBy)

	tmpls := f.notifier.templates()
	assert.Equal(t, string(pipeline.TemplateApplicationShortlisted), tmpls[len(tmpls)-1])

	csv, err := f.svc.ShortlistCSV(ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Score\n\"Ada Lovelace\",\"ada@example.com\",\"85\"\n", csv)

	again, err := f.svc.CreateShortlist(ctx, j.ID, nil, "")
	require.NoError(t, err)
	list, err := f.svc.ListShortlists(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, again.ID, list[0].ID)
	assert.Equal(t, pipeline.SystemActor, list[0].CreatedBy)
}

func TestSetThreshold(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.SetThreshold(40), ErrInvalidInput)
	assert.Equal(t, selection.DefaultThreshold, f.svc.Threshold())
	require.NoError(t, f.svc.SetThreshold(60))
	assert.Equal(t, 60, f.svc.Threshold())
}

func TestAnalyticsAndReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, app.ID, StatusChange{Status: "offer"})
	require.NoError(t, err)

	snap, err := f.svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalJobs)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 1, snap.StatusCounts.Offer)
	assert.Equal(t, 100, snap.ConversionRates.ApplicationToOffer)

	csv, err := f.svc.ReportCSV(ctx, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(csv, "Hiring Pipeline Report\n"))
	assert.Contains(t, csv, "Offers Extended,1")

	auditCSV, err := f.svc.AuditCSV(ctx, uuid.Nil, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(auditCSV, "id,action,details,ts,user\n"))
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	batches, err := ingest.Parse([]byte(`
jobs:
  - title: Data Engineer
    requirement:
      skills: [Python]
    mandatory: [skills]
    applications:
      - name: Grace
        email: grace@example.com
        skills: Python, Spark
      - name: Linus
        skills: C
      - applicant:
          name: Ken
          skills: Python
        status: offer
`))
	require.NoError(t, err)

	sum, err := f.svc.Import(ctx, batches, "import")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.JobsCreated)
	assert.Equal(t, 3, sum.Applications)
	assert.Equal(t, 1, sum.ManualReview)

	apps, err := f.svc.ListApplications(ctx, ApplicationQuery{Status: "offer"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Ken", apps[0].Name)
	assert.NotNil(t, apps[0].OfferedAt)

	_, err = f.svc.ListApplications(ctx, ApplicationQuery{Status: "hired"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// interleavingStore runs during once, right after the next ListApplications
// read, to simulate a request that lands while a job is being ranked.
type interleavingStore struct {
	store.Store
	during func()
}

func (s *interleavingStore) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]application.Application, error) {
	out, err := s.Store.ListApplications(ctx, f)
	if fn := s.during; fn != nil {
		s.during = nil
		fn()
	}
	return out, err
}

func TestAutoSelectKeepsConcurrentStatusChange(t *testing.T) {
	mem, err := memory.Open("", nil, nil)
	require.NoError(t, err)
	st := &interleavingStore{Store: mem}
	f := newFixtureOn(st)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)

	st.during = func() {
		_, err := f.svc.ChangeStatus(ctx, app.ID, StatusChange{Status: "rejected", Note: "Failed technical test"})
		require.NoError(t, err)
		_, err = f.svc.AddNote(ctx, app.ID, "lead", "declined take-home")
		require.NoError(t, err)
	}
	res, err := f.svc.AutoSelect(ctx, j.ID, nil)
	require.NoError(t, err)
	require.Len(t, res.Ranked, 1)
	assert.Equal(t, application.StatusRejected, res.Ranked[0].Application.Status)

	got, err := f.svc.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, got.Status)
	assert.Equal(t, []string{"Failed technical test"}, got.ScreeningErrors)
	require.Len(t, got.Notes, 1)
	require.NotNil(t, got.AIScore)
	assert.Equal(t, 85, *got.AIScore)
	assert.True(t, got.AutoSelected)
}

func TestCreateShortlistKeepsConcurrentInterviewScore(t *testing.T) {
	mem, err := memory.Open("", nil, nil)
	require.NoError(t, err)
	st := &interleavingStore{Store: mem}
	f := newFixtureOn(st)
	ctx := context.Background()
	j := f.backendJob(t)
	app, err := f.svc.SubmitApplication(ctx, j.ID, strongCandidate(), SubmitOptions{})
	require.NoError(t, err)

	st.during = func() {
		_, err := f.svc.RecordInterview(ctx, app.ID, 9, "lead")
		require.NoError(t, err)
	}
	sl, err := f.svc.CreateShortlist(ctx, j.ID, nil, "hr")
	require.NoError(t, err)
	require.Len(t, sl.Entries, 1)

	got, err := f.svc.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.InterviewScore)
	assert.Equal(t, 90, *got.InterviewScore)
	require.NotNil(t, got.AIScore)
}
