package enhance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/core/usecases"
	"trustlens/internal/platform/cache"
	platformerrors "trustlens/internal/platform/errors"
	"trustlens/internal/platform/httpclient"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/resilience"
	"trustlens/internal/testutil"
)

type stubAnalyzer struct {
	name     string
	analysis ports.Analysis
	err      error
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (ports.Analysis, error) {
	return s.analysis, s.err
}

type keyedAnalyzer struct {
	stubAnalyzer
}

func (k *keyedAnalyzer) InputKey(payload *domain.ContentPayload) string { return "custom-key" }

type stubScorer struct {
	score int
	err   error
	calls int
}

func (s *stubScorer) Score(ctx context.Context, payload *domain.ContentPayload, base ports.Analysis) (int, error) {
	s.calls++
	return s.score, s.err
}

func payload() *domain.ContentPayload {
	return domain.NewContentPayload(domain.ContentKindArticle, testutil.FixtureArticle)
}

func TestWrap_Validation(t *testing.T) {
	base := &stubAnalyzer{name: "bias"}

	_, err := Wrap(base, &stubScorer{}, 1.5, nil)
	testutil.AssertErrorIs(t, err, domain.ErrInvalidConfig, "blend above 1 should be rejected")

	_, err = Wrap(base, &stubScorer{}, -0.1, nil)
	testutil.AssertErrorIs(t, err, domain.ErrInvalidConfig, "negative blend should be rejected")

	_, err = Wrap(nil, &stubScorer{}, 0.5, nil)
	testutil.AssertErrorIs(t, err, domain.ErrInvalidConfig, "nil base should be rejected")

	a, err := Wrap(base, &stubScorer{}, 0.5, nil)
	testutil.AssertNoError(t, err, "valid wrap")
	testutil.AssertEqual(t, a.Name(), "bias", "decorator keeps the base name")
}

func TestAnalyzer_Blend(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		secondary int
		blend     float64
		want      int
	}{
		{"even blend", 60, 80, 0.5, 70},
		{"base only", 60, 80, 0, 60},
		{"secondary only", 60, 80, 1, 80},
		{"quarter blend", 40, 100, 0.25, 55},
		{"secondary clamped", 50, 150, 0.5, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &stubAnalyzer{name: "bias", analysis: ports.Analysis{Score: tt.base, Findings: domain.Findings{"words": 10}}}
			a, err := Wrap(base, &stubScorer{score: tt.secondary}, tt.blend, logx.NewNop())
			testutil.AssertNoError(t, err, "wrap")

			got, err := a.Analyze(context.Background(), payload(), nil)
			testutil.AssertNoError(t, err, "analysis should succeed")
			testutil.AssertEqual(t, got.Score, tt.want, "blended score")
			testutil.AssertEqual(t, got.Findings["words"], 10, "base findings kept")

			enh := got.Findings["enhancement"].(map[string]any)
			testutil.AssertEqual(t, enh["applied"], true, "enhancement applied")
		})
	}
}

func TestAnalyzer_SecondaryFailureKeepsBase(t *testing.T) {
	baseFindings := domain.Findings{"words": 10}
	base := &stubAnalyzer{name: "bias", analysis: ports.Analysis{Score: 64, Findings: baseFindings}}
	a, _ := Wrap(base, &stubScorer{err: errors.New("service down")}, 0.5, logx.NewNop())

	got, err := a.Analyze(context.Background(), payload(), nil)
	testutil.AssertNoError(t, err, "secondary failure must not fail the analyzer")
	testutil.AssertEqual(t, got.Score, 64, "base score kept")

	enh := got.Findings["enhancement"].(map[string]any)
	testutil.AssertEqual(t, enh["applied"], false, "enhancement not applied")
	testutil.AssertEqual(t, enh["error"], "service down", "error reported")
	_, mutated := baseFindings["enhancement"]
	testutil.AssertFalse(t, mutated, "base findings must not be mutated")
	testutil.AssertTrue(t, got.Degraded, "transient secondary failure degrades the result")
}

func TestAnalyzer_PermanentSecondaryFailureNotDegraded(t *testing.T) {
	base := &stubAnalyzer{name: "bias", analysis: ports.Analysis{Score: 64}}
	a, _ := Wrap(base, &stubScorer{err: platformerrors.FromStatus(http.StatusUnauthorized)}, 0.5, logx.NewNop())

	got, err := a.Analyze(context.Background(), payload(), nil)
	testutil.AssertNoError(t, err, "secondary failure must not fail the analyzer")
	testutil.AssertEqual(t, got.Score, 64, "base score kept")
	testutil.AssertFalse(t, got.Degraded, "a retry cannot fix a rejected request")
}

func TestAnalyzer_BaseFailureSkipsSecondary(t *testing.T) {
	scorer := &stubScorer{score: 90}
	base := &stubAnalyzer{name: "bias", err: domain.Definitive("too short")}
	a, _ := Wrap(base, scorer, 0.5, logx.NewNop())

	_, err := a.Analyze(context.Background(), payload(), nil)
	testutil.AssertTrue(t, domain.IsDefinitive(err), "base error should propagate unchanged")
	testutil.AssertEqual(t, scorer.calls, 0, "secondary must not run after base failure")
}

func TestAnalyzer_InputKey(t *testing.T) {
	p := payload()

	plain, _ := Wrap(&stubAnalyzer{name: "a"}, &stubScorer{}, 0.5, nil)
	testutil.AssertEqual(t, plain.InputKey(p), p.CacheKey(), "default key is the payload key")

	keyed, _ := Wrap(&keyedAnalyzer{stubAnalyzer{name: "b"}}, &stubScorer{}, 0.5, nil)
	key := keyed.InputKey(p)
	testutil.AssertTrue(t, strings.HasPrefix(key, "custom-key\n"), "base key is part of the key")

	other := domain.NewContentPayload(domain.ContentKindArticle, "A different article from the same outlet.")
	testutil.AssertNotEqual(t, keyed.InputKey(other), key, "scorer input changes the key even when the base key does not")

	retitled := payload()
	retitled.Title = "Another headline"
	testutil.AssertNotEqual(t, keyed.InputKey(retitled), key, "title is scorer input")
}

func TestRemoteScorer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"score": 42}`))
		case "/empty":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := httpclient.New(httpclient.DefaultConfig(), logx.NewNop())
	base := ports.Analysis{Score: 70}

	score, err := NewRemoteScorer(client, "bias", server.URL+"/ok", "").Score(context.Background(), payload(), base)
	testutil.AssertNoError(t, err, "score should succeed")
	testutil.AssertEqual(t, score, 42, "remote score")

	_, err = NewRemoteScorer(client, "bias", server.URL+"/empty", "").Score(context.Background(), payload(), base)
	testutil.AssertError(t, err, "missing score should fail")

	_, err = NewRemoteScorer(client, "bias", server.URL+"/down", "").Score(context.Background(), payload(), base)
	testutil.AssertError(t, err, "5xx should fail")
}

func TestApply(t *testing.T) {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewNop())
	analyzers := map[string]ports.Analyzer{
		"bias":        &stubAnalyzer{name: "bias"},
		"credibility": &stubAnalyzer{name: "credibility"},
		"sourcing":    &stubAnalyzer{name: "sourcing"},
	}
	configs := []ports.AnalyzerConfig{
		{Name: "bias", Enabled: true, Options: map[string]any{OptionEndpoint: "https://enhance.example.org", OptionBlend: 0.3}},
		{Name: "credibility", Enabled: true},
		{Name: "sourcing", Enabled: true, Options: map[string]any{OptionEndpoint: "https://enhance.example.org", OptionBlend: 2.0}},
	}

	out, err := Apply(analyzers, configs, client, logx.NewNop())
	testutil.AssertErrorIs(t, err, domain.ErrInvalidConfig, "invalid blend should be reported")

	wrapped, ok := out["bias"].(*Analyzer)
	testutil.AssertTrue(t, ok, "bias should be wrapped")
	testutil.AssertInDelta(t, wrapped.blend, 0.3, 1e-9, "blend from options")

	_, ok = out["credibility"].(*Analyzer)
	testutil.AssertFalse(t, ok, "credibility has no endpoint")

	_, ok = out["sourcing"].(*Analyzer)
	testutil.AssertFalse(t, ok, "invalid config leaves the base analyzer")

	_, ok = analyzers["bias"].(*Analyzer)
	testutil.AssertFalse(t, ok, "input map must not be modified")
}

// domainKeyed puntúa solo por dominio, como credibility.
type domainKeyed struct{ stubAnalyzer }

func (d *domainKeyed) InputKey(payload *domain.ContentPayload) string { return payload.SourceDomain }

// textScorer da 100 si el texto menciona "confirmed" y 0 si no.
type textScorer struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (s *textScorer) Score(ctx context.Context, payload *domain.ContentPayload, base ports.Analysis) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return 0, errors.New("connection reset")
	}
	if strings.Contains(payload.Text, "confirmed") {
		return 100, nil
	}
	return 0, nil
}

func enhancedOrchestrator(t *testing.T, scorer Scorer) *usecases.Orchestrator {
	t.Helper()
	base := &domainKeyed{stubAnalyzer{name: "credibility", analysis: ports.Analysis{Score: 100}}}
	wrapped, err := Wrap(base, scorer, 1.0, logx.NewNop())
	testutil.AssertNoError(t, err, "wrap")

	invoker := resilience.NewRetryPolicy(
		resilience.NewTimeoutGuard(nil),
		resilience.WithRetryConfig(resilience.RetryConfig{BaseDelay: time.Millisecond}),
		resilience.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Analyzers:       map[string]ports.Analyzer{"credibility": wrapped},
		Cache:           cache.NewResultCache(10),
		DefaultCacheTTL: time.Hour,
		Invoker:         invoker,
		Logger:          logx.NewNop(),
	})
	t.Cleanup(orch.Close)
	return orch
}

func outletPayload(text string) *domain.ContentPayload {
	return domain.NewContentPayload(domain.ContentKindArticle, text).WithSourceDomain("example.com")
}

func TestEnhanced_SameOutletDifferentTextMissesCache(t *testing.T) {
	scorer := &textScorer{}
	orch := enhancedOrchestrator(t, scorer)
	configs := []ports.AnalyzerConfig{{Name: "credibility", Enabled: true, Timeout: time.Second, MaxRetries: 1, Weight: 1}}

	first, err := orch.Run(context.Background(), outletPayload("Officials confirmed the figures on Tuesday."), configs)
	testutil.AssertNoError(t, err, "first run")
	second, err := orch.Run(context.Background(), outletPayload("Rumours spread online about the figures."), configs)
	testutil.AssertNoError(t, err, "second run")

	testutil.AssertEqual(t, first.PerAnalyzer["credibility"].Score, 100, "first article score")
	testutil.AssertFalse(t, second.PerAnalyzer["credibility"].FromCache, "different text must not share the entry")
	testutil.AssertEqual(t, second.PerAnalyzer["credibility"].Score, 0, "second article scored on its own text")
	testutil.AssertEqual(t, scorer.calls, 2, "scorer called for each article")
}

func TestEnhanced_TransientScorerFailureIsRetriedNotCached(t *testing.T) {
	scorer := &textScorer{failures: 1}
	orch := enhancedOrchestrator(t, scorer)
	configs := []ports.AnalyzerConfig{{Name: "credibility", Enabled: true, Timeout: time.Second, MaxRetries: 2, Weight: 1}}
	text := "Officials confirmed the figures on Tuesday."

	first, err := orch.Run(context.Background(), outletPayload(text), configs)
	testutil.AssertNoError(t, err, "first run")
	res := first.PerAnalyzer["credibility"]
	testutil.AssertEqual(t, res.Attempts, 2, "scorer failure triggers a retry")
	testutil.AssertFalse(t, res.Degraded, "retry produced the full result")
	testutil.AssertEqual(t, res.Findings["enhancement"].(map[string]any)["applied"], true, "enhancement applied")

	second, err := orch.Run(context.Background(), outletPayload(text), configs)
	testutil.AssertNoError(t, err, "second run")
	testutil.AssertTrue(t, second.PerAnalyzer["credibility"].FromCache, "full result is cached")
	testutil.AssertEqual(t, scorer.calls, 2, "no scorer call on cache hit")
}

func TestEnhanced_ExhaustedScorerFailureNotCached(t *testing.T) {
	scorer := &textScorer{failures: 2}
	orch := enhancedOrchestrator(t, scorer)
	configs := []ports.AnalyzerConfig{{Name: "credibility", Enabled: true, Timeout: time.Second, MaxRetries: 2, Weight: 1}}
	text := "Officials confirmed the figures on Tuesday."

	first, _ := orch.Run(context.Background(), outletPayload(text), configs)
	testutil.AssertTrue(t, first.PerAnalyzer["credibility"].Degraded, "base result kept after retries run out")

	second, _ := orch.Run(context.Background(), outletPayload(text), configs)
	res := second.PerAnalyzer["credibility"]
	testutil.AssertFalse(t, res.FromCache, "degraded result must not be cached")
	testutil.AssertFalse(t, res.Degraded, "recovered scorer applies on the next run")
	testutil.AssertEqual(t, scorer.calls, 3, "scorer called again on the next run")
}
