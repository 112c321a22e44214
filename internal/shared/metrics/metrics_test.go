package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveToolCounts(t *testing.T) {
	before := testutil.ToFloat64(toolExecutions.WithLabelValues("skill_adder", ""))
	ObserveTool("skill_adder", "", 10*time.Millisecond)
	after := testutil.ToFloat64(toolExecutions.WithLabelValues("skill_adder", ""))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveRun("committed", time.Second)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "agent_runs_total") {
		t.Fatalf("expected agent_runs_total in output")
	}
}
