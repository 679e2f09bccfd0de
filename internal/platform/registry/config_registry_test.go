// internal/platform/registry/config_registry_test.go
package registry

import (
	"bytes"
	"testing"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/testutil"
)

func sampleConfigs() []ports.AnalyzerConfig {
	return []ports.AnalyzerConfig{
		{Name: "credibility", Enabled: true, Timeout: 5 * time.Second, MaxRetries: 2, Weight: 0.5},
		{Name: "bias", Enabled: true, Timeout: 5 * time.Second, MaxRetries: 2, Weight: 0.3, Options: map[string]any{"lexicon": "default"}},
		{Name: "factcheck", Enabled: false, Timeout: 10 * time.Second, MaxRetries: 3, Weight: 0.2},
	}
}

func TestConfigRegistry_Queries(t *testing.T) {
	r, err := NewConfigRegistry(sampleConfigs(), nil, logx.NewNop())
	testutil.AssertNoError(t, err, "valid configs")

	testutil.AssertTrue(t, r.IsEnabled("credibility"), "enabled")
	testutil.AssertFalse(t, r.IsEnabled("factcheck"), "disabled")
	testutil.AssertFalse(t, r.IsEnabled("missing"), "unknown")

	enabled := r.AllEnabled()
	testutil.AssertLen(t, enabled, 2, "enabled count")
	testutil.AssertEqual(t, enabled[0].Name, "credibility", "declaration order")
	testutil.AssertEqual(t, enabled[1].Name, "bias", "declaration order")

	testutil.AssertEqual(t, r.WeightOf("bias"), 0.3, "weight")
	testutil.AssertEqual(t, r.WeightOf("missing"), 0.0, "unknown weight")
	testutil.AssertInDelta(t, r.TotalEnabledWeight(), 0.8, 1e-9, "total enabled weight")
	testutil.AssertEqual(t, r.Names(), []string{"credibility", "bias", "factcheck"}, "names")
	testutil.AssertLen(t, r.All(), 3, "all")
}

func TestConfigRegistry_Immutable(t *testing.T) {
	configs := sampleConfigs()
	r, err := NewConfigRegistry(configs, nil, nil)
	testutil.AssertNoError(t, err, "valid configs")

	configs[1].Options["lexicon"] = "mutated"
	got, ok := r.Get("bias")
	testutil.AssertTrue(t, ok, "found")
	testutil.AssertEqual(t, got.Options["lexicon"], "default", "input mutation not visible")

	got.Options["lexicon"] = "mutated again"
	again, _ := r.Get("bias")
	testutil.AssertEqual(t, again.Options["lexicon"], "default", "returned copy mutation not visible")
}

func TestConfigRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		configs []ports.AnalyzerConfig
		known   func(string) bool
		target  error
	}{
		{
			name:    "empty name",
			configs: []ports.AnalyzerConfig{{Name: "  ", Enabled: true}},
			target:  domain.ErrInvalidConfig,
		},
		{
			name:    "negative weight",
			configs: []ports.AnalyzerConfig{{Name: "bias", Weight: -0.1}},
			target:  domain.ErrNegativeWeight,
		},
		{
			name:    "negative retries",
			configs: []ports.AnalyzerConfig{{Name: "bias", MaxRetries: -1}},
			target:  domain.ErrInvalidConfig,
		},
		{
			name:    "negative timeout",
			configs: []ports.AnalyzerConfig{{Name: "bias", Timeout: -time.Second}},
			target:  domain.ErrInvalidConfig,
		},
		{
			name:    "duplicate",
			configs: []ports.AnalyzerConfig{{Name: "bias"}, {Name: "bias"}},
			target:  domain.ErrDuplicateConfig,
		},
		{
			name:    "unknown analyzer",
			configs: []ports.AnalyzerConfig{{Name: "astrology"}},
			known:   func(name string) bool { return name == "bias" },
			target:  domain.ErrUnknownAnalyzer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewConfigRegistry(tt.configs, tt.known, logx.NewNop())
			testutil.AssertNil(t, r, "no registry on error")
			testutil.AssertErrorIs(t, err, tt.target, "error kind")
		})
	}
}

func TestConfigRegistry_WarnsOnWeightSum(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewWithWriter(&buf, logx.LevelWarn)

	_, err := NewConfigRegistry(sampleConfigs(), nil, logger)
	testutil.AssertNoError(t, err, "uneven weights are not fatal")
	testutil.AssertContains(t, buf.String(), "do not sum to 1.0", "warning logged")

	buf.Reset()
	balanced := sampleConfigs()
	balanced[2].Enabled = true
	_, err = NewConfigRegistry(balanced, nil, logger)
	testutil.AssertNoError(t, err, "balanced")
	testutil.AssertEqual(t, buf.String(), "", "no warning when weights sum to 1.0")
}
