package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/metrics"
)

// DefaultTimeout bounds a single tool execution.
const DefaultTimeout = 20 * time.Second

// Executor validates and runs tools. It never retries: a tool that times out
// is reported as an external_service error and skipped by the caller.
type Executor struct {
	Registry *Registry
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewExecutor wires an Executor.
func NewExecutor(registry *Registry, timeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{Registry: registry, Timeout: timeout, Logger: logger}
}

type outcome struct {
	result Result
	err    error
}

// Execute runs the named tool. Errors are *apperr.Error values: validation
// for bad args, external_service for deadline or cancellation, tool otherwise.
func (e *Executor) Execute(ctx context.Context, name string, in Input) (Result, error) {
	start := time.Now()
	result, err := e.execute(ctx, name, in)
	code := ""
	if err != nil {
		code = string(apperr.CodeOf(err))
		e.Logger.Warn("tool execution failed",
			zap.String("tool", name),
			zap.String("code", code),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
	metrics.ObserveTool(name, code, time.Since(start))
	return result, err
}

func (e *Executor) execute(ctx context.Context, name string, in Input) (Result, error) {
	tool, err := e.Registry.Get(name)
	if err != nil {
		return Result{}, apperr.InvalidArgs(name, err)
	}
	if in.Args == nil {
		in.Args = Args{}
	}
	if err := tool.Validate(in.Args); err != nil {
		return Result{}, apperr.InvalidArgs(name, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := tool.Execute(runCtx, in)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-runCtx.Done():
		return Result{}, apperr.External(name, runCtx.Err())
	case out := <-done:
		if out.err == nil {
			return out.result, nil
		}
		var classified *apperr.Error
		switch {
		case errors.As(out.err, &classified):
			return Result{}, out.err
		case errors.Is(out.err, context.DeadlineExceeded), errors.Is(out.err, context.Canceled):
			return Result{}, apperr.External(name, out.err)
		default:
			return Result{}, apperr.Tool(name, out.err)
		}
	}
}
