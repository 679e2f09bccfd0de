// internal/platform/resilience/timeout_guard.go
package resilience

import (
	"context"
	"fmt"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
)

// Invoker ejecuta un analyzer una vez y siempre retorna un resultado.
type Invoker interface {
	Run(ctx context.Context, analyzer ports.Analyzer, payload *domain.ContentPayload, cfg ports.AnalyzerConfig) domain.AnalyzerResult
}

// TimeoutGuard envuelve una invocación con un deadline duro. Al vencer deja
// de esperar, descarta el resultado tardío y retorna un resultado Timeout.
type TimeoutGuard struct {
	logger logx.Logger
}

// NewTimeoutGuard crea un nuevo TimeoutGuard.
func NewTimeoutGuard(logger logx.Logger) *TimeoutGuard {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &TimeoutGuard{
		logger: logger.With("component", "timeout-guard"),
	}
}

type invocation struct {
	analysis ports.Analysis
	err      error
}

// Run invoca el analyzer con cfg.Timeout como límite (0 = solo el deadline de ctx).
func (g *TimeoutGuard) Run(
	ctx context.Context,
	analyzer ports.Analyzer,
	payload *domain.ContentPayload,
	cfg ports.AnalyzerConfig,
) domain.AnalyzerResult {
	name := analyzerName(analyzer, cfg)
	start := time.Now()

	if ctx.Err() != nil {
		return timeoutResult(name, domain.ErrPipelineDeadline, start)
	}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}
	defer cancel()

	// Buffer de 1: una invocación abandonada puede terminar sin bloquearse
	done := make(chan invocation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invocation{err: domain.Definitive(fmt.Sprintf("%v: %v", domain.ErrAnalyzerPanicked, r))}
			}
		}()
		analysis, err := analyzer.Analyze(callCtx, payload, cfg.Options)
		done <- invocation{analysis: analysis, err: err}
	}()

	select {
	case out := <-done:
		res := g.toResult(name, out, callCtx)
		res.Elapsed = time.Since(start)
		if res.ErrorKind == domain.ErrorKindTimeout {
			g.logTimeout(name, cfg.Timeout, ctx)
		}
		return res

	case <-callCtx.Done():
		g.logTimeout(name, cfg.Timeout, ctx)
		if ctx.Err() != nil {
			return timeoutResult(name, domain.ErrPipelineDeadline, start)
		}
		return timeoutResult(name, fmt.Errorf("%w after %s", domain.ErrAnalyzerTimeout, cfg.Timeout), start)
	}
}

// toResult traduce la respuesta del analyzer a un AnalyzerResult.
func (g *TimeoutGuard) toResult(name string, out invocation, callCtx context.Context) domain.AnalyzerResult {
	if out.err == nil {
		res := domain.NewSuccessResult(name, out.analysis.Score, out.analysis.Findings)
		res.Degraded = out.analysis.Degraded
		return res
	}

	kind := Classify(out.err)
	if kind == domain.ErrorKindTransient && callCtx.Err() != nil {
		// el analyzer respetó la cancelación y retornó su propio error
		kind = domain.ErrorKindTimeout
	}
	if kind == domain.ErrorKindDefinitive {
		g.logger.Debug("analyzer returned failure verdict", "analyzer", name, "error", out.err.Error())
	}
	return domain.NewFailureResult(name, kind, out.err)
}

func (g *TimeoutGuard) logTimeout(name string, timeout time.Duration, parent context.Context) {
	if parent.Err() != nil {
		g.logger.Warn("analyzer abandoned at pipeline deadline", "analyzer", name)
		return
	}
	g.logger.Warn("analyzer timed out", "analyzer", name, "timeout_ms", timeout.Milliseconds())
}

func timeoutResult(name string, err error, start time.Time) domain.AnalyzerResult {
	res := domain.NewFailureResult(name, domain.ErrorKindTimeout, err)
	res.Elapsed = time.Since(start)
	return res
}

func analyzerName(analyzer ports.Analyzer, cfg ports.AnalyzerConfig) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return analyzer.Name()
}
