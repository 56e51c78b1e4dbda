package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"talent-track/internal/delivery/http/middleware"
	"talent-track/internal/delivery/http/routes"
	"talent-track/internal/metrics"
	"talent-track/internal/notification"
	"talent-track/internal/store/memory"
	"talent-track/internal/usecase/recruitment"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type outbox struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (o *outbox) Enqueue(msg notification.Message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return true
}

func (o *outbox) last() notification.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.msgs[len(o.msgs)-1]
}

type testServer struct {
	app    *fiber.App
	outbox *outbox
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	st, err := memory.Open("", nil, nil)
	require.NoError(t, err)
	box := &outbox{}
	m := metrics.New()
	svc := recruitment.NewService(recruitment.Deps{
		Store:     st,
		Notifier:  box,
		Metrics:   m,
		Threshold: 75,
		Now:       func() time.Time { return time.Now().UTC() },
	})

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	app.Use(middleware.NewAccessLogMiddleware(nil, m).Middleware())
	routes.NewRegistry(svc, nil, m, nil).Register(app)
	return testServer{app: app, outbox: box}
}

func (s testServer) do(t *testing.T, method, path string, body any) (int, semanticResponse) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Actor", "recruiter@example.com")

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var sr semanticResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	return resp.StatusCode, sr
}

func (s testServer) raw(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type idOnly struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func createJob(t *testing.T, s testServer) uuid.UUID {
	t.Helper()
	code, sr := s.do(t, http.MethodPost, "/api/v1/jobs", map[string]any{
		"title": "Backend Engineer",
		"requirement": map[string]any{
			"education":            "Bachelor",
			"min_experience_years": 3,
			"skills":               []string{"Go", "PostgreSQL"},
		},
		"mandatory": []string{"skills"},
	})
	require.Equal(t, http.StatusCreated, code, sr.Message)
	return decode[idOnly](t, sr.Data).ID
}

func TestPipelineAPI_SubmitScoreShortlistReport(t *testing.T) {
	s := newTestServer(t)
	jobID := createJob(t, s)

	code, sr := s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/applications", map[string]any{
		"applicant": map[string]any{
			"name":       "Ada Lovelace",
			"email":      "ada@example.com",
			"degree":     "Master",
			"experience": 6,
			"skills":     []string{"Go", "PostgreSQL"},
			"linkedin":   "https://linkedin.com/in/ada",
			"address":    "London",
			"phone":      "+44",
		},
	})
	require.Equal(t, http.StatusCreated, code, sr.Message)
	ada := decode[idOnly](t, sr.Data)
	assert.Equal(t, "submitted", ada.Status)
	assert.Equal(t, "APPLICATION_RECEIVED", s.outbox.last().TemplateType)

	code, sr = s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/applications", map[string]any{
		"name":   "Bob",
		"email":  "bob@example.com",
		"skills": "Go",
	})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	failures := decode[struct {
		Failures []string `json:"failures"`
	}](t, sr.Data)
	assert.Equal(t, []string{"missing required skills: PostgreSQL"}, failures.Failures)

	code, sr = s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/applications?force=true", map[string]any{
		"name":   "Bob",
		"email":  "bob@example.com",
		"skills": "Go",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "manual-review", decode[idOnly](t, sr.Data).Status)

	code, sr = s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/auto-select", map[string]any{"threshold": 40})
	assert.Equal(t, http.StatusBadRequest, code, sr.Message)

	code, sr = s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/auto-select", nil)
	require.Equal(t, http.StatusOK, code, sr.Message)
	sel := decode[recruitment.SelectionResult](t, sr.Data)
	require.Len(t, sel.Ranked, 2)
	assert.Equal(t, ada.ID, sel.Ranked[0].Application.ID)
	assert.Equal(t, 85, sel.Ranked[0].AIScore)
	assert.Equal(t, 1, sel.Selected)

	code, sr = s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/shortlists", nil)
	require.Equal(t, http.StatusCreated, code, sr.Message)
	shortlist := decode[idOnly](t, sr.Data)
	assert.Equal(t, "APPLICATION_SHORTLISTED", s.outbox.last().TemplateType)

	resp, body := s.raw(t, "/api/v1/shortlists/"+shortlist.ID.String()+"/csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Equal(t, "Name,Email,Score\n\"Ada Lovelace\",\"ada@example.com\",\"85\"\n", body)

	code, sr = s.do(t, http.MethodPatch, "/api/v1/applications/"+ada.ID.String()+"/status", map[string]any{"status": "offer"})
	require.Equal(t, http.StatusOK, code, sr.Message)
	assert.Equal(t, "OFFER_EXTENDED", s.outbox.last().TemplateType)

	code, sr = s.do(t, http.MethodGet, "/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, code)
	snap := decode[map[string]any](t, sr.Data)
	assert.EqualValues(t, 2, snap["total_applications"])
	assert.Contains(t, snap, "hiring_funnel")
	assert.Contains(t, snap["status_counts"], "manual_review")

	resp, body = s.raw(t, "/api/v1/reports/hiring.csv?title=Q3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "Q3\nGenerated At,"))
	assert.Contains(t, body, "\nOffers Extended,1\n")

	resp, body = s.raw(t, "/api/v1/audit.csv?application_id="+ada.ID.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,action,details,ts,user", lines[0])
	assert.Contains(t, lines[1], `"application_submitted"`)
	assert.Contains(t, lines[2], `"recruiter@example.com"`)
}

func TestPipelineAPI_RejectAndErrors(t *testing.T) {
	s := newTestServer(t)
	jobID := createJob(t, s)

	code, sr := s.do(t, http.MethodPost, "/api/v1/jobs/"+jobID.String()+"/applications", map[string]any{
		"name": "Cy", "email": "cy@example.com", "skills": "Go, PostgreSQL",
	})
	require.Equal(t, http.StatusCreated, code, sr.Message)
	app := decode[idOnly](t, sr.Data)

	code, sr = s.do(t, http.MethodPatch, "/api/v1/applications/"+app.ID.String()+"/status", map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, sr.Message, "archived")

	code, sr = s.do(t, http.MethodPatch, "/api/v1/applications/"+app.ID.String()+"/status", map[string]any{"status": "rejected"})
	require.Equal(t, http.StatusOK, code)
	rejected := decode[struct {
		ScreeningErrors []string `json:"screening_errors"`
	}](t, sr.Data)
	assert.Equal(t, []string{"Rejected by reviewer"}, rejected.ScreeningErrors)
	msg := s.outbox.last()
	assert.Equal(t, "REJECTION", msg.TemplateType)
	assert.Equal(t, "Backend Engineer", msg.Data["jobTitle"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/applications/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/applications/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/applications/"+app.ID.String()+"/interview", map[string]any{"rating": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, sr = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", sr.Message)

	resp, body := s.raw(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "talent_status_transitions_total")
}
