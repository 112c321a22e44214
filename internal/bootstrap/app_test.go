package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/bootstrap"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/config"
)

func testConfig() config.Config {
	return config.Config{
		Port:                   "0",
		Env:                    "dev",
		CORSAllowOrigin:        []string{"http://localhost:5173"},
		LLMProvider:            config.ProviderNone,
		LLMTimeout:             time.Second,
		ToolTimeout:            time.Second,
		ClarificationThreshold: 0.5,
	}
}

func build(t *testing.T, cfg config.Config) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(context.Background()) })
	return app
}

func TestBuildInMemory(t *testing.T) {
	app := build(t, testConfig())
	assert.Nil(t, app.DB)
	assert.Nil(t, app.Redis)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestBuildWithRedisStacks(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	app := build(t, cfg)
	require.NotNil(t, app.Redis)

	doc := map[string]any{
		"contact": map[string]any{"name": "Dana Levi"},
		"summary": "Backend engineer.",
		"skills":  map[string]any{"technical": []string{"Go"}},
	}
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(doc))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/import", &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	keys := mr.Keys()
	assert.NotEmpty(t, keys, "expected the history stack in redis")

	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	var status struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Checks["redis"])
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"
	_, err := bootstrap.Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
