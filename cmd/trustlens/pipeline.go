// cmd/trustlens/pipeline.go
package main

import (
	"io"

	"trustlens/internal/analyzers/enhance"
	"trustlens/internal/core/ports"
	"trustlens/internal/core/usecases"
	"trustlens/internal/platform/cache"
	"trustlens/internal/platform/config"
	"trustlens/internal/platform/httpclient"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/rate"
	"trustlens/internal/platform/registry"
	"trustlens/internal/platform/resilience"
	"trustlens/internal/platform/ui"
	"trustlens/internal/platform/workerpool"
)

// pipeline agrupa el orchestrator y los recursos que hay que liberar.
type pipeline struct {
	orch     *usecases.Orchestrator
	configs  *registry.ConfigRegistry
	notifier ports.Notifier
	cleanup  []func()
}

// Close libera los recursos en orden inverso de creación.
func (p *pipeline) Close() {
	p.orch.Close()
	if p.notifier != nil {
		_ = p.notifier.Close()
	}
	for i := len(p.cleanup) - 1; i >= 0; i-- {
		p.cleanup[i]()
	}
}

// buildPipeline arma el pipeline completo a partir de la configuración.
// Solo retorna error ante configuración inválida; los analyzers que no se
// pueden construir se registran en el log y quedan como fallo definitivo.
func buildPipeline(cfg config.Config, logger logx.Logger, progress io.Writer) (*pipeline, error) {
	p := &pipeline{}

	// 1. Registry de configuraciones (errores fatales)
	configs, err := registry.NewConfigRegistry(cfg.Analyzers, registry.Global().IsRegistered, logger)
	if err != nil {
		return nil, configError(err)
	}
	p.configs = configs

	// 2. Analyzers desde el registry global
	analyzers, err := registry.Global().Build(configs.AllEnabled(), logger)
	if err != nil {
		logger.Err(err, "phase", "analyzer-build")
	}

	// 3. Pasada de mejora opcional
	client := httpclient.New(httpclient.Config{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	}, logger)
	analyzers, err = enhance.Apply(analyzers, configs.AllEnabled(), client, logger)
	if err != nil {
		logger.Err(err, "phase", "enhance")
	}

	// 4. Cache de resultados
	var store cache.Store
	if cfg.Cache.Enabled {
		resultCache := cache.NewResultCache(cfg.Cache.MaxEntries)
		if cfg.Cache.CleanupInterval > 0 {
			p.cleanup = append(p.cleanup, resultCache.StartCleanupWorker(cfg.Cache.CleanupInterval))
		}
		store = resultCache
	}

	// 5. Resiliencia: rate limit, circuit breaker y retry
	limits := rate.NewSet()
	for _, c := range configs.AllEnabled() {
		if c.RateLimit > 0 {
			limits.Configure(c.Name, c.RateLimit, 1)
		}
	}

	retryOpts := []resilience.RetryOption{
		resilience.WithRetryConfig(cfg.RetryConfig()),
		resilience.WithRateLimits(limits),
		resilience.WithRetryLogger(logger),
	}
	if cfg.Breaker.Enabled {
		retryOpts = append(retryOpts, resilience.WithBreakers(resilience.NewBreakerSet(resilience.BreakerConfig{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			Cooldown:         cfg.Breaker.Cooldown,
			HalfOpenProbes:   cfg.Breaker.HalfOpenProbes,
		})))
	}
	invoker := resilience.NewRetryPolicy(resilience.NewTimeoutGuard(logger), retryOpts...)

	// 6. Scheduler y agregador
	scheduler, err := workerpool.NewScheduler(cfg.Scheduler)
	if err != nil {
		return nil, configError(err)
	}
	aggregator := usecases.NewScoreAggregator(usecases.LevelThresholds{
		Excellent: cfg.Levels.Excellent,
		Good:      cfg.Levels.Good,
		Fair:      cfg.Levels.Fair,
	}, cfg.MinimumRequired)

	// 7. Progreso en terminal
	var observers []ports.Notifier
	if cfg.Output.Progress && progress != nil {
		presenter, err := ui.NewPresenter(ui.UIModeProgress, progress)
		if err != nil {
			return nil, configError(err)
		}
		p.notifier = ui.NewProgressNotifier(presenter)
		observers = append(observers, p.notifier)
	}

	p.orch = usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Analyzers:       analyzers,
		Metadata:        registry.Global().GetAllMetadata(),
		Configs:         configs,
		Cache:           store,
		DefaultCacheTTL: cfg.Cache.DefaultTTL,
		Invoker:         invoker,
		Aggregator:      aggregator,
		Workers:         cfg.Workers,
		Scheduler:       scheduler,
		PipelineTimeout: cfg.PipelineTimeout,
		Observers:       observers,
		Logger:          logger,
	})

	logger.Debug("pipeline built",
		"analyzers", len(analyzers),
		"enabled", len(configs.AllEnabled()),
		"scheduler", cfg.Scheduler,
		"workers", cfg.Workers,
		"cache", cfg.Cache.Enabled,
		"breaker", cfg.Breaker.Enabled,
	)

	return p, nil
}
