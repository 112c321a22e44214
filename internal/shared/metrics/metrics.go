package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_runs_total",
			Help: "Agent runs by outcome (committed, dry_run, clarification, fatal)",
		},
		[]string{"outcome"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_run_duration_seconds",
			Help:    "Duration of agent runs in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	toolExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_executions_total",
			Help: "Tool executions by tool and error code (empty on success)",
		},
		[]string{"tool", "code"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_tool_duration_seconds",
			Help:    "Duration of tool executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	intentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_intents_total",
			Help: "Interpreted intents by source (rule, llm, none) and kind",
		},
		[]string{"source", "kind"},
	)

	historyOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_history_operations_total",
			Help: "History operations (commit, undo, redo) by result",
		},
		[]string{"op", "result"},
	)

	atsScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_ats_score",
			Help:    "Distribution of after-run ATS scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	telemetryDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_telemetry_events_dropped_total",
			Help: "Telemetry events dropped because the sink buffer was full",
		},
	)
)

// ObserveRun records one finished run.
func ObserveRun(outcome string, d time.Duration) {
	runsTotal.WithLabelValues(outcome).Inc()
	runDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveTool records one tool execution. code is empty on success.
func ObserveTool(tool, code string, d time.Duration) {
	toolExecutions.WithLabelValues(tool, code).Inc()
	toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// IncIntent counts an interpreted intent.
func IncIntent(source, kind string) {
	intentsTotal.WithLabelValues(source, kind).Inc()
}

// IncHistoryOp counts a history operation.
func IncHistoryOp(op, result string) {
	historyOps.WithLabelValues(op, result).Inc()
}

// ObserveScore records an ATS score.
func ObserveScore(score int) {
	atsScore.Observe(float64(score))
}

// IncTelemetryDropped counts a dropped telemetry event.
func IncTelemetryDropped() {
	telemetryDropped.Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
