package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trustlens/internal/core/domain"
	"trustlens/internal/platform/config"
	"trustlens/internal/platform/logx"
	"trustlens/internal/testutil"
)

func quietConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Output.Progress = false
	cfg.Cache.CleanupInterval = 0
	return cfg
}

func articlePayload(t *testing.T) *domain.ContentPayload {
	t.Helper()
	payload, err := buildPayload([]byte(testutil.FixtureArticle), inputOptions{Domain: "example.com", Author: "Ana Ortiz"})
	testutil.AssertNoError(t, err, "payload should build")
	return payload
}

func TestBuildPipeline_EndToEnd(t *testing.T) {
	p, err := buildPipeline(quietConfig(), logx.NewNop(), nil)
	testutil.AssertNoError(t, err, "pipeline should build")
	defer p.Close()

	outcome, err := p.orch.RunEnabled(context.Background(), articlePayload(t))
	testutil.AssertNoError(t, err, "run should succeed")

	testutil.AssertEqual(t, outcome.AnalyzersRun, 4, "four analyzers enabled by default")
	testutil.AssertEqual(t, outcome.AnalyzersSucceeded, 4, "all local analyzers succeed")
	testutil.AssertTrue(t, outcome.SufficientData, "sufficient data")
	testutil.AssertTrue(t, outcome.HasScore(), "overall score present")

	_, hasFactcheck := outcome.PerAnalyzer["factcheck"]
	testutil.AssertFalse(t, hasFactcheck, "disabled analyzer absent from outcome")
}

func TestBuildPipeline_CachedSecondRun(t *testing.T) {
	p, err := buildPipeline(quietConfig(), logx.NewNop(), nil)
	testutil.AssertNoError(t, err, "pipeline should build")
	defer p.Close()

	first, err := p.orch.RunEnabled(context.Background(), articlePayload(t))
	testutil.AssertNoError(t, err, "first run")
	second, err := p.orch.RunEnabled(context.Background(), articlePayload(t))
	testutil.AssertNoError(t, err, "second run")

	for name, res := range second.PerAnalyzer {
		testutil.AssertTrue(t, res.FromCache, "second run served from cache: "+name)
		testutil.AssertEqual(t, res.Score, first.PerAnalyzer[name].Score, "cached score matches: "+name)
	}
	testutil.AssertEqual(t, *second.OverallScore, *first.OverallScore, "same overall score")
}

func TestBuildPipeline_FactcheckWithoutEndpoint(t *testing.T) {
	cfg := quietConfig()
	for i := range cfg.Analyzers {
		if cfg.Analyzers[i].Name == "factcheck" {
			cfg.Analyzers[i].Enabled = true
		}
	}

	p, err := buildPipeline(cfg, logx.NewNop(), nil)
	testutil.AssertNoError(t, err, "build errors are logged, not fatal")
	defer p.Close()

	outcome, err := p.orch.RunEnabled(context.Background(), articlePayload(t))
	testutil.AssertNoError(t, err, "run should succeed")

	res := outcome.PerAnalyzer["factcheck"]
	testutil.AssertFalse(t, res.Success, "factcheck cannot run")
	testutil.AssertEqual(t, res.ErrorKind, domain.ErrorKindDefinitive, "missing analyzer is definitive")
	testutil.AssertEqual(t, outcome.AnalyzersSucceeded, 4, "others still succeed")
}

func TestBuildPipeline_ConfigErrors(t *testing.T) {
	t.Run("unknown analyzer", func(t *testing.T) {
		cfg := quietConfig()
		cfg.Analyzers = append(cfg.Analyzers, cfg.Analyzers[0])
		cfg.Analyzers[len(cfg.Analyzers)-1].Name = "astrology"

		_, err := buildPipeline(cfg, logx.NewNop(), nil)
		testutil.AssertErrorIs(t, err, domain.ErrUnknownAnalyzer, "unknown analyzer is fatal")
		testutil.AssertEqual(t, exitCode(err), exitConfigError, "config exit code")
	})

	t.Run("duplicate analyzer", func(t *testing.T) {
		cfg := quietConfig()
		cfg.Analyzers = append(cfg.Analyzers, cfg.Analyzers[0])

		_, err := buildPipeline(cfg, logx.NewNop(), nil)
		testutil.AssertErrorIs(t, err, domain.ErrDuplicateConfig, "duplicate is fatal")
	})

	t.Run("unknown scheduler", func(t *testing.T) {
		cfg := quietConfig()
		cfg.Scheduler = "random"

		_, err := buildPipeline(cfg, logx.NewNop(), nil)
		testutil.AssertError(t, err, "unknown scheduler is fatal")
		testutil.AssertEqual(t, exitCode(err), exitConfigError, "config exit code")
	})
}

func TestBuildPipeline_Progress(t *testing.T) {
	cfg := quietConfig()
	cfg.Output.Progress = true

	var progress bytes.Buffer
	p, err := buildPipeline(cfg, logx.NewNop(), &progress)
	testutil.AssertNoError(t, err, "pipeline should build")
	testutil.AssertNotNil(t, p.notifier, "progress notifier installed")

	_, err = p.orch.RunEnabled(context.Background(), articlePayload(t))
	testutil.AssertNoError(t, err, "run should succeed")
	p.Close()

	testutil.AssertTrue(t, strings.Contains(progress.String(), "credibility"), "progress mentions analyzers")
}

func TestExitCode(t *testing.T) {
	testutil.AssertEqual(t, exitCode(errors.New("boom")), exitRunError, "plain error")
	testutil.AssertEqual(t, exitCode(configError(errors.New("bad"))), exitConfigError, "config error")
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.txt")
	testutil.AssertNoError(t, os.WriteFile(path, []byte(testutil.FixtureArticle), 0o644), "write fixture")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"analyze", path, "--domain", "example.com", "-f", "json", "-q", "--no-cache", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	testutil.AssertNoError(t, err, "analyze should succeed")

	var report struct {
		Version string `json:"version"`
		Outcome struct {
			OverallScore   *int `json:"overall_score"`
			AnalyzersRun   int  `json:"analyzers_run"`
			SufficientData bool `json:"sufficient_data"`
		} `json:"outcome"`
	}
	testutil.AssertNoError(t, json.Unmarshal(out.Bytes(), &report), "stdout holds the JSON report")
	testutil.AssertEqual(t, report.Version, version, "report version")
	testutil.AssertNotNil(t, report.Outcome.OverallScore, "score present")
	testutil.AssertEqual(t, report.Outcome.AnalyzersRun, 4, "default analyzers ran")
	testutil.AssertTrue(t, report.Outcome.SufficientData, "sufficient data")
}
