// Package bootstrap wires configuration into stores, the interpreter, tools
// and the run orchestrator.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/agent"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/history"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/interpreter"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm/gemini"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm/openai"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/locks"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/services/health"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/config"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/server"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/storage/db"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/telemetry"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/tracing"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/tools"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

const telemetryQueueSize = 256

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Router    *gin.Engine
	DB        *sql.DB
	Redis     *redis.Client
	Completer llm.Completer
	History   *history.Service
	Design    *design.Service
	Agent     *agent.Service
	Health    *health.Service
	Sink      *telemetry.BufferedSink

	shutdownTracing func(context.Context) error
}

// Build prepares every dependency and the HTTP router.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger, Health: health.NewService()}

	shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: "resume-agent",
		Environment: cfg.Env,
	}, logger)
	if err != nil {
		return nil, err
	}
	app.shutdownTracing = shutdown

	if app.DB, err = buildDB(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if app.Redis, err = buildRedis(ctx, cfg, logger); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if app.Completer, err = buildCompleter(ctx, cfg, logger); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if err := buildServices(app); err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Logger:       logger,
		Health:       app.Health,
		AgentHandler: agent.NewHandler(app.Agent),
	})
	return app, nil
}

// Close flushes telemetry and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.Sink != nil {
		if err := a.Sink.Close(ctx); err != nil {
			a.Logger.Warn("telemetry flush incomplete", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			a.Logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}
}

func buildDB(ctx context.Context, cfg config.Config, logger *zap.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			logger.Info("DATABASE_URL empty; using in-memory stores")
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions(), logger)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts, logger)
	if err != nil {
		if cfg.IsDevLike() {
			logger.Warn("database connect failed; using in-memory stores", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.IsDevLike() {
			logger.Warn("redis ping failed; using in-process locks", zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// buildCompleter picks the model provider. Without one, interpretation is
// rule-only and the rewrite tool reports external_service errors.
func buildCompleter(ctx context.Context, cfg config.Config, logger *zap.Logger) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout, logger)
	case config.ProviderGemini:
		return gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.LLMModel, logger)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildServices(app *App) error {
	cfg, logger := app.Config, app.Logger

	var locker locks.Locker = locks.NewMemory()
	if app.Redis != nil {
		locker = locks.NewRedis(app.Redis, logger)
	}

	var historyStore history.Store
	var designStore design.Store
	switch {
	case app.DB != nil && app.Redis != nil:
		pg := &history.PGStore{DB: app.DB}
		stacks := history.NewRedisStackStore(app.Redis)
		historyStore = history.SplitStore{VersionStore: pg, Stacks: stacks, Entries: stacks}
		designStore = &design.PGStore{DB: app.DB}
	case app.DB != nil:
		historyStore = &history.PGStore{DB: app.DB}
		designStore = &design.PGStore{DB: app.DB}
	case app.Redis != nil:
		stacks := history.NewRedisStackStore(app.Redis)
		historyStore = history.SplitStore{VersionStore: history.NewMemoryStore(), Stacks: stacks, Entries: stacks}
		designStore = design.NewMemoryStore()
	default:
		historyStore = history.NewMemoryStore()
		designStore = design.NewMemoryStore()
	}
	if app.DB != nil {
		app.Health.Register("postgres", app.DB.PingContext)
	}
	if app.Redis != nil {
		app.Health.Register("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	engine := scoring.NewEngine()
	registry, err := tools.NewDefaultRegistry(engine, app.Completer)
	if err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	interp := interpreter.New(registry, app.Completer, logger)
	interp.Threshold = cfg.ClarificationThreshold
	interp.Timeout = cfg.LLMTimeout

	app.Sink = telemetry.NewBufferedSink(telemetry.LogPublisher(logger), telemetryQueueSize, logger)
	app.History = history.NewService(historyStore, locker, logger)
	app.Design = design.NewService(designStore, locker, logger)
	app.Agent = agent.NewService(agent.Deps{
		History:     app.History,
		Design:      app.Design,
		Interpreter: interp,
		Executor:    tools.NewExecutor(registry, cfg.ToolTimeout, logger),
		Jobs:        jobs.NewService(app.Completer, logger),
		Engine:      engine,
		Completer:   app.Completer,
		Locker:      locker,
		Sink:        app.Sink,
		Logger:      logger,
	})
	return nil
}
