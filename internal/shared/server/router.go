package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/agent"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/services/health"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/config"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/metrics"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/server/middleware"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/server/respond"
)

// RouterDeps bundles handlers needed for routing.
type RouterDeps struct {
	Config       config.Config
	Logger       *zap.Logger
	Health       *health.Service
	AgentHandler *agent.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := healthSvc.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.AgentHandler != nil {
		deps.AgentHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
