package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/graph"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/orchestrator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.UseNop()
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Default()
	solver, err := orchestrator.NewFromConfig(cfg, nil, nil)
	require.NoError(t, err)
	holder := knowledge.NewHolder(knowledge.New([]knowledge.Entry{
		{ID: "a", Question: "q", Embedding: []float32{1, 0}},
	}, 0.7))
	return New(cfg, solver, holder).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSolveEndpoint(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/v1/solve", SolveRequest{Question: "Solve sin x = 0.5", SessionID: "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp orchestrator.AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Solutions: 30°, 150°", resp.FinalAnswer)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "template_solve_equations", resp.Method)

	w = do(t, h, http.MethodPost, "/api/v1/solve", SolveRequest{Question: "explain step 2", SessionID: "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Step 2: Reference angle: 30°", resp.FinalAnswer)

	w = do(t, h, http.MethodDelete, "/api/v1/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/solve", SolveRequest{Question: "explain step 2", SessionID: "s1"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, orchestrator.MethodNoMatch, resp.Method)
}

func TestSolveRejectsMissingQuestion(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/v1/solve", map[string]string{"session_id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question is required")
}

func TestGraphEndpoint(t *testing.T) {
	h := newTestServer(t)
	lo, hi := 0.0, 360.0
	tests := []struct {
		name string
		req  GraphRequest
		code int
	}{
		{"default domain", GraphRequest{Equation: "y = 2sin(3x)"}, http.StatusOK},
		{"degrees with domain", GraphRequest{Equation: "cos(x) + 1", Unit: "degrees", DomainMin: &lo, DomainMax: &hi}, http.StatusOK},
		{"inverted domain", GraphRequest{Equation: "cos(x)", DomainMin: &hi, DomainMax: &lo}, http.StatusBadRequest},
		{"not trigonometric", GraphRequest{Equation: "banana"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/graph", tt.req)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var resp GraphResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, strings.HasPrefix(resp.GraphImage, "data:image/png;base64,"))
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["knowledge_entries"])

	w = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingSolver struct{}

func (failingSolver) Solve(context.Context, string, string) orchestrator.AnswerResponse {
	return orchestrator.AnswerResponse{}
}
func (failingSolver) Reset(context.Context, string) error { return errors.New("redis down") }
func (failingSolver) Renderer() *graph.Renderer           { return graph.New(graph.Options{}) }

func TestResetSessionFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enable = false
	h := New(cfg, failingSolver{}, nil).Handler()

	w := do(t, h, http.MethodDelete, "/api/v1/sessions/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "knowledge_entries")
}
