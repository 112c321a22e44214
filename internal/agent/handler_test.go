package agent

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t, nil)
	r := gin.New()
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHandlerImportRunUndo(t *testing.T) {
	r := newTestRouter(t)

	resp := do(t, r, http.MethodPost, "/api/v1/agent/import", sampleDocument())
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var imported struct {
		Version struct {
			ID string `json:"id"`
		} `json:"version"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &imported))
	require.NotEmpty(t, imported.Version.ID)

	resp = do(t, r, http.MethodPost, "/api/v1/agent/run", map[string]any{
		"command":         "add Kafka to my skills",
		"base_version_id": imported.Version.ID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var run struct {
		Committed bool `json:"committed"`
		Version   struct {
			ID string `json:"id"`
		} `json:"version"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &run))
	assert.True(t, run.Committed)

	resp = do(t, r, http.MethodGet, "/api/v1/agent/versions/"+run.Version.ID, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, r, http.MethodPost, "/api/v1/agent/undo", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = do(t, r, http.MethodGet, "/api/v1/agent/history", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var view HistoryView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.Len(t, view.Entries, 2)
	assert.Len(t, view.Stack.Future, 1)
}

func TestHandlerErrors(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/agent/import", sampleDocument())

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"empty command", http.MethodPost, "/api/v1/agent/run", map[string]any{"command": " "}, http.StatusBadRequest, "validation_error"},
		{"schema violation", http.MethodPost, "/api/v1/agent/run", map[string]any{"command": "add Go to my skills", "document": map[string]any{"hobbies": []string{"chess"}}}, http.StatusBadRequest, "validation_error"},
		{"stale base", http.MethodPost, "/api/v1/agent/run", map[string]any{"command": "add Go to my skills", "base_version_id": "stale"}, http.StatusConflict, "conflict"},
		{"nothing to redo", http.MethodPost, "/api/v1/agent/redo", nil, http.StatusUnprocessableEntity, "history_error"},
		{"unknown version", http.MethodGet, "/api/v1/agent/versions/nope", nil, http.StatusNotFound, "not_found"},
		{"score without input", http.MethodPost, "/api/v1/agent/score", map[string]any{}, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, r, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, resp.Code, resp.Body.String())
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandlerRequiresIdentity(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/agent/history", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHandlerScoreText(t *testing.T) {
	r := newTestRouter(t)
	resp := do(t, r, http.MethodPost, "/api/v1/agent/score", map[string]any{
		"resume_text": "Dana Levi\nExperience\nBackend Engineer at Acme\nSkills\nGo, Kafka",
		"job_text":    "Senior Backend Engineer. Requirements: Go, Kafka, Terraform.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var report struct {
		Score          int    `json:"score"`
		ScoringVersion string `json:"scoring_version"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.NotEmpty(t, report.ScoringVersion)
}

func TestHandlerImportPlainTextNeedsLLM(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/import", bytes.NewBufferString("Dana Levi\nBackend Engineer"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("X-User-Id", "u1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadGateway, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "external_service")
}
