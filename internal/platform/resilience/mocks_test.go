package resilience

import (
	"context"
	"sync"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
)

// fakeAnalyzer responde según fn; call empieza en 1.
type fakeAnalyzer struct {
	name string
	fn   func(ctx context.Context, call int) (ports.Analysis, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeAnalyzer) Name() string { return f.name }

func (f *fakeAnalyzer) Analyze(ctx context.Context, _ *domain.ContentPayload, _ map[string]any) (ports.Analysis, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(ctx, call)
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func scoring(score int) func(context.Context, int) (ports.Analysis, error) {
	return func(context.Context, int) (ports.Analysis, error) {
		return ports.Analysis{Score: score, Findings: domain.Findings{"ok": true}}, nil
	}
}

func failing(err error) func(context.Context, int) (ports.Analysis, error) {
	return func(context.Context, int) (ports.Analysis, error) {
		return ports.Analysis{}, err
	}
}

func sleeping(d time.Duration, score int) func(context.Context, int) (ports.Analysis, error) {
	return func(ctx context.Context, _ int) (ports.Analysis, error) {
		time.Sleep(d)
		return ports.Analysis{Score: score}, nil
	}
}

func testPayload() *domain.ContentPayload {
	return domain.NewContentPayload(domain.ContentKindArticle, "Officials confirmed the figures on Tuesday.")
}

func testConfig(name string, timeout time.Duration, retries int) ports.AnalyzerConfig {
	return ports.AnalyzerConfig{
		Name:       name,
		Enabled:    true,
		Timeout:    timeout,
		MaxRetries: retries,
		Weight:     1,
	}
}
