package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"resumalyzer/internal/ai"
	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/observability"
	"resumalyzer/internal/store"
	"resumalyzer/internal/tasks"
	"resumalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*Server
	invoker *ai.ScriptedInvoker
}

type serverOption func(*ServerConfig, *Deps)

func withKeys(keys ...string) serverOption {
	return func(cfg *ServerConfig, _ *Deps) { cfg.APIKeys = keys }
}

func withRateLimit(perMin, burst int) serverOption {
	return func(cfg *ServerConfig, _ *Deps) {
		cfg.RateLimit = &config.RateLimitConfig{Enabled: true, CallsPerMin: perMin, BurstCapacity: burst, ByIP: true}
	}
}

func withStore(t *testing.T) serverOption {
	return func(_ *ServerConfig, deps *Deps) {
		s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "analyses.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		deps.Store = s
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	inv := ai.NewScriptedInvoker()
	cfg := ServerConfig{Version: "test", MaxRequestSize: 1 << 20, MaxUploadSize: 1 << 20}
	deps := Deps{
		Analyzer: tasks.NewAnalyzer(inv, tasks.NewCatalog(nil), errors.Discard()),
		Provider: inv,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}
	s := NewServer(&config.Config{}, cfg, deps, errors.Discard())
	t.Cleanup(s.cleanup)
	return &testServer{Server: s, invoker: inv}
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func jsonRequest(t *testing.T, method, path string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, files map[string][2]string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, file := range files {
		fw, err := mw.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func critiqueReply(t *testing.T, score int, skills ...string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"score":       score,
		"hard_skills": skills,
		"strengths":   []string{"Clear impact"},
		"summary":     "Good resume.",
	})
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		t.Run(path, func(t *testing.T) {
			rec, body := ts.do(t, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "healthy", body["status"])
			model, ok := body["ai_model"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "scripted", model["name"])
		})
	}
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t)
	ts.invoker.QueueFor(types.TaskCritique, ai.Reply("```json\n"+critiqueReply(t, 150, "Go")+"\n```"))

	rec, body := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/analyze",
		AnalyzeRequest{ResumeText: "Jane Doe, Go developer", TargetDomain: "software-engineer"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	analysis, ok := body["analysis"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(100), analysis["score"], "score should be clamped")
	assert.Equal(t, []any{"Go"}, analysis["hard_skills"])
	assert.Equal(t, []any{}, analysis["weaknesses"], "missing lists default to empty")
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"missing domain", jsonRequest(t, http.MethodPost, "/api/resume/analyze", AnalyzeRequest{ResumeText: "x"})},
		{"missing job description", jsonRequest(t, http.MethodPost, "/api/resume/jd-match", JDMatchRequest{ResumeText: "x"})},
		{"missing bullet", jsonRequest(t, http.MethodPost, "/api/resume/rewrite", RewriteRequest{})},
		{"missing job title", jsonRequest(t, http.MethodPost, "/api/resume/cover-letter", CoverLetterRequest{UserName: "Jane"})},
		{"missing message", jsonRequest(t, http.MethodPost, "/api/chat", ChatRequest{})},
		{"missing skills", jsonRequest(t, http.MethodPost, "/api/resume/learning-path", map[string]any{})},
		{"missing second resume", jsonRequest(t, http.MethodPost, "/api/resume/compare", CompareRequest{ResumeA: "a"})},
		{"wrong content type", httptest.NewRequest(http.MethodPost, "/api/resume/roast", strings.NewReader(`{"resumeText":"x"}`))},
		{"no upload", jsonRequest(t, http.MethodPost, "/api/resume/upload", map[string]any{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := ts.do(t, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Zero(t, ts.invoker.CallCount(), "rejected requests must not reach the provider")
}

func TestProviderFailureStillSucceeds(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/roast", RoastRequest{ResumeText: "Jane"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tasks.RoastFallback, body["roast"])

	rec, body = ts.do(t, jsonRequest(t, http.MethodPost, "/api/chat", ChatRequest{Message: "hi"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tasks.ChatApology, body["response"])
}

func TestLearningPathEmptySkills(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/learning-path",
		LearningPathRequest{MissingSkills: []string{}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["learningPath"])
	assert.Zero(t, ts.invoker.CallCount())
}

func TestCompareJSON(t *testing.T) {
	ts := newTestServer(t)
	ts.invoker.QueueFor(types.TaskCritique,
		ai.Reply(critiqueReply(t, 70, "Go")),
		ai.Reply(critiqueReply(t, 70, "Go")))
	ts.invoker.QueueFor(types.TaskBattleJudge,
		ai.Reply(`{"winner":"Candidate A","winner_id":"resume1","verdict":"Sharper metrics.","better_points":[],"worse_points":[]}`))

	rec, body := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/compare",
		CompareRequest{ResumeA: "resume one", ResumeB: "resume two"}))
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	battle := data["battle"].(map[string]any)
	assert.Equal(t, "resume1", battle["winner_id"])
	stats := data["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["score_diff"])
	assert.Equal(t, []any{}, stats["skills_added"])
	assert.Equal(t, 3, ts.invoker.CallCount())
}

func TestCompareMultipart(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, multipartRequest(t, "/api/resume/compare", map[string][2]string{
		"resume1": {"a.txt", "Alpha resume"},
		"resume2": {"b.md", "Beta resume"},
	}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	battle := data["battle"].(map[string]any)
	assert.Equal(t, "tie", battle["winner_id"], "exhausted script falls back to a tie")
}

func TestUploadPersistsAndServesHistory(t *testing.T) {
	ts := newTestServer(t, withStore(t))
	ts.invoker.QueueFor(types.TaskCritique, ai.Reply(critiqueReply(t, 81, "Go", "SQL")))

	rec, body := ts.do(t, multipartRequest(t, "/api/resume/upload",
		map[string][2]string{"resume": {"resume.txt", "Jane Doe\nGo developer\n"}},
		map[string]string{"userEmail": "jane@example.com", "targetDomain": "data-science"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Jane Doe Go developer", body["extractedText"])
	id, ok := body["analysisId"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)

	rec, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/resume/history?email=jane@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	history := body["history"].([]any)
	require.Len(t, history, 1)
	first := history[0].(map[string]any)
	assert.Equal(t, id, first["id"])
	assert.Equal(t, "data-science", first["target_domain"])

	rec, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/resume/analysis/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	analysis := body["analysis"].(map[string]any)
	results := analysis["analysis_results"].(map[string]any)
	assert.Equal(t, float64(81), results["score"])

	rec, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/resume/analysis/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, multipartRequest(t, "/api/resume/upload",
		map[string][2]string{"resume": {"resume.doc", "binary"}}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Failed to process resume", body["error"])
	assert.Zero(t, ts.invoker.CallCount())
}

func TestUploadUnreadableFileIsUnprocessable(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, multipartRequest(t, "/api/resume/upload",
		map[string][2]string{"resume": {"resume.pdf", "this is not a pdf"}}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Failed to process resume", body["error"])
	assert.Zero(t, ts.invoker.CallCount())
}

func TestHistoryDisabled(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/resume/history?email=a@b.c", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t, withKeys("secret-key-123456"))

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret-key-123456"}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer secret-key-123456"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, http.MethodPost, "/api/resume/roast", RoastRequest{ResumeText: "x"})
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec, _ := ts.do(t, req)
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}

	rec, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, withRateLimit(1, 1))

	rec, _ := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/roast", RoastRequest{ResumeText: "x"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/roast", RoastRequest{ResumeText: "x"}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded", body["error"])

	_, stats := ts.do(t, httptest.NewRequest(http.MethodGet, "/stats", nil))
	limiting := stats["rate_limiting"].(map[string]any)
	assert.Equal(t, float64(1), limiting["denied_total"])
}

func TestRateLimitChargesCompareThreeCalls(t *testing.T) {
	ts := newTestServer(t, withRateLimit(1, 4))

	rec, _ := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/compare",
		CompareRequest{ResumeA: "a", ResumeB: "b"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/roast", RoastRequest{ResumeText: "x"}))
	assert.Equal(t, http.StatusOK, rec.Code, "one call is left after a compare")

	rec, body := ts.do(t, jsonRequest(t, http.MethodPost, "/api/resume/compare",
		CompareRequest{ResumeA: "a", ResumeB: "b"}))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, body["message"], "3 model call")

	_, stats := ts.do(t, httptest.NewRequest(http.MethodGet, "/stats", nil))
	denied := stats["rate_limiting"].(map[string]any)["denied_by_route"].(map[string]any)
	assert.Equal(t, float64(1), denied["POST /api/resume/compare"])
}

func TestMetricsEndpoint(t *testing.T) {
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{
		ServiceName:    "resumalyzer",
		Enabled:        true,
		MetricsEnabled: true,
		SampleRate:     1,
		Prometheus:     observability.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	}, nil)
	require.NoError(t, err)

	inv := ai.NewScriptedInvoker()
	analyzer := tasks.NewAnalyzer(inv, nil, nil,
		tasks.WithSchemaObserver(om.Contract()),
		tasks.WithFallbackObserver(om.Contract()))
	s := NewServer(&config.Config{}, ServerConfig{}, Deps{Analyzer: analyzer, Provider: inv, Observability: om}, nil)

	h := s.Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/api/resume/roast", RoastRequest{ResumeText: "x"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resumalyzer_fallbacks_total")
}
