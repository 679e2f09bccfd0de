// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"sync"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
)

// mockAnalyzer es un mock de ports.Analyzer para tests del orchestrator
type mockAnalyzer struct {
	name        string
	analyzeFunc func(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error)

	mu        sync.Mutex
	callCount int
}

func newMockAnalyzer(name string) *mockAnalyzer {
	return &mockAnalyzer{name: name}
}

func (m *mockAnalyzer) Name() string {
	return m.name
}

func (m *mockAnalyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, payload, options)
	}
	return ports.Analysis{Score: 50}, nil
}

func (m *mockAnalyzer) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// mockAnalyzerWithScore creates a mock that always returns score
func mockAnalyzerWithScore(name string, score int) *mockAnalyzer {
	mock := newMockAnalyzer(name)
	mock.analyzeFunc = func(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
		return ports.Analysis{
			Score:    score,
			Findings: domain.Findings{"signals": []any{"a", "b"}, "score_hint": score},
		}, nil
	}
	return mock
}

// mockAnalyzerWithError creates a mock that always fails
func mockAnalyzerWithError(name string, err error) *mockAnalyzer {
	mock := newMockAnalyzer(name)
	mock.analyzeFunc = func(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
		return ports.Analysis{}, err
	}
	return mock
}

// mockAnalyzerHanging creates a mock that ignores cancellation for d
func mockAnalyzerHanging(name string, d time.Duration) *mockAnalyzer {
	mock := newMockAnalyzer(name)
	mock.analyzeFunc = func(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
		time.Sleep(d)
		return ports.Analysis{Score: 100}, nil
	}
	return mock
}

// mockNotifier es un mock de ports.Notifier para tests
type mockNotifier struct {
	mu         sync.Mutex
	notifyFunc func(ctx context.Context, event ports.Event) error
	events     []ports.Event
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{events: []ports.Event{}}
}

func (m *mockNotifier) Notify(ctx context.Context, event ports.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, event)
	}
	return nil
}

func (m *mockNotifier) Close() error {
	return nil
}

// getEventsByType returns events filtered by type
func (m *mockNotifier) getEventsByType(eventType ports.EventType) []ports.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var filtered []ports.Event
	for _, e := range m.events {
		if e.Type == eventType {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// staticConfigs implementa ConfigSource
type staticConfigs []ports.AnalyzerConfig

func (s staticConfigs) AllEnabled() []ports.AnalyzerConfig {
	var out []ports.AnalyzerConfig
	for _, cfg := range s {
		if cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out
}

func analyzerConfig(name string, weight float64, timeout time.Duration) ports.AnalyzerConfig {
	return ports.AnalyzerConfig{
		Name:       name,
		Enabled:    true,
		Timeout:    timeout,
		MaxRetries: 1,
		Weight:     weight,
	}
}

func analyzersByName(list ...*mockAnalyzer) map[string]ports.Analyzer {
	out := make(map[string]ports.Analyzer, len(list))
	for _, a := range list {
		out[a.name] = a
	}
	return out
}

func testPayload() *domain.ContentPayload {
	p := domain.NewContentPayload(domain.ContentKindArticle,
		"The ministry published the full dataset on Monday, according to two officials.")
	p.ID = "payload-1"
	return p.WithSourceDomain("example.org")
}
