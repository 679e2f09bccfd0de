// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/cache"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/resilience"
	"trustlens/internal/platform/workerpool"
)

// notificationTimeout tiempo máximo que se espera a cada observer.
const notificationTimeout = 2 * time.Second

// ConfigSource provee las configuraciones habilitadas (ej: registry.ConfigRegistry).
type ConfigSource interface {
	AllEnabled() []ports.AnalyzerConfig
}

// Orchestrator ejecuta los analyzers habilitados de forma concurrente sobre
// un payload y combina sus resultados en un PipelineOutcome.
//
// Cada analyzer se invoca como cache → retry → timeout → analyzer. Un fallo
// individual nunca aborta la ejecución de los demás.
type Orchestrator struct {
	analyzers  map[string]ports.Analyzer
	metadata   map[string]ports.AnalyzerMetadata
	configs    ConfigSource
	cache      cache.Store
	defaultTTL time.Duration
	invoker    resilience.Invoker
	aggregator *ScoreAggregator
	pool       *workerpool.WorkerPool
	deadline   time.Duration
	observers  []ports.Notifier
	logger     logx.Logger

	inflight singleflight.Group
}

// pipelineRun agrupa el estado de una ejecución. Las notificaciones se
// rastrean por ejecución; una vez cerrada, los eventos de invocaciones
// abandonadas se descartan.
type pipelineRun struct {
	id string

	mu       sync.Mutex
	closed   bool
	notifyWg sync.WaitGroup
}

func (r *pipelineRun) track() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.notifyWg.Add(1)
	return true
}

// close deja de aceptar notificaciones y espera las que están en curso.
func (r *pipelineRun) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.notifyWg.Wait()
}

// OrchestratorOptions configura el orchestrator.
type OrchestratorOptions struct {
	// Analyzers implementaciones por nombre
	Analyzers map[string]ports.Analyzer

	// Metadata opcional; aporta el costo para el scheduler
	Metadata map[string]ports.AnalyzerMetadata

	// Configs fuente de configuración para RunEnabled
	Configs ConfigSource

	// Cache nil desactiva la memoización
	Cache cache.Store

	// DefaultCacheTTL se usa cuando AnalyzerConfig.CacheTTL es 0
	DefaultCacheTTL time.Duration

	// Invoker envuelve cada invocación (por defecto retry sobre timeout guard)
	Invoker resilience.Invoker

	Aggregator *ScoreAggregator
	Workers    int
	Scheduler  workerpool.Scheduler

	// PipelineTimeout deadline global de una ejecución (0 = solo el de ctx)
	PipelineTimeout time.Duration

	Observers []ports.Notifier
	Logger    logx.Logger
}

// NewOrchestrator crea una nueva instancia del orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Invoker == nil {
		opts.Invoker = resilience.NewRetryPolicy(
			resilience.NewTimeoutGuard(opts.Logger),
			resilience.WithRetryLogger(opts.Logger),
		)
	}
	if opts.Aggregator == nil {
		opts.Aggregator = NewScoreAggregator(DefaultLevelThresholds(), 1)
	}
	if opts.Analyzers == nil {
		opts.Analyzers = make(map[string]ports.Analyzer)
	}

	return &Orchestrator{
		analyzers:  opts.Analyzers,
		metadata:   opts.Metadata,
		configs:    opts.Configs,
		cache:      opts.Cache,
		defaultTTL: opts.DefaultCacheTTL,
		invoker:    opts.Invoker,
		aggregator: opts.Aggregator,
		pool: workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{
			Workers:   opts.Workers,
			Scheduler: opts.Scheduler,
			Logger:    opts.Logger,
		}),
		deadline:  opts.PipelineTimeout,
		observers: opts.Observers,
		logger:    opts.Logger.With("component", "orchestrator"),
	}
}

// RunEnabled ejecuta los analyzers habilitados de la ConfigSource configurada.
func (o *Orchestrator) RunEnabled(ctx context.Context, payload *domain.ContentPayload) (*domain.PipelineOutcome, error) {
	if o.configs == nil {
		return nil, fmt.Errorf("%w: orchestrator has no config source", domain.ErrInvalidConfig)
	}
	return o.Run(ctx, payload, o.configs.AllEnabled())
}

// Run ejecuta los analyzers habilitados de configs contra el payload.
//
// Solo retorna error si el payload es inválido. En cualquier otro caso
// retorna un outcome con exactamente una entrada por analyzer habilitado,
// aunque haya fallado o excedido su tiempo.
func (o *Orchestrator) Run(ctx context.Context, payload *domain.ContentPayload, configs []ports.AnalyzerConfig) (*domain.PipelineOutcome, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	run := &pipelineRun{id: uuid.NewString()}
	outcome := &domain.PipelineOutcome{
		RunID:       run.id,
		PayloadID:   payload.ID,
		Level:       domain.LevelUnknown,
		PerAnalyzer: make(map[string]domain.AnalyzerResult),
		StartedAt:   start,
	}

	enabled := o.filterEnabled(configs)
	outcome.AnalyzersRun = len(enabled)

	names := make([]string, len(enabled))
	for i, cfg := range enabled {
		names[i] = cfg.Name
	}

	logger := o.logger.With("run_id", outcome.RunID)
	logger.Info("starting pipeline",
		"analyzers", len(enabled),
		"words", payload.WordCount(),
		"source_domain", payload.SourceDomain,
	)

	o.notify(ctx, run, ports.NewEvent(
		ports.EventTypePipelineStarted,
		run.id,
		"",
		ports.PipelineStartedEvent{PayloadID: payload.ID, Analyzers: names},
	))

	if len(enabled) > 0 {
		runCtx, cancel := ctx, context.CancelFunc(func() {})
		if o.deadline > 0 {
			runCtx, cancel = context.WithTimeout(ctx, o.deadline)
		}
		o.execute(runCtx, run, outcome, payload, enabled)
		cancel()
	}

	o.finalize(outcome, enabled)
	outcome.Duration = time.Since(start)

	logger.Info("pipeline completed",
		"score", scoreField(outcome),
		"level", outcome.Level,
		"succeeded", outcome.AnalyzersSucceeded,
		"run", outcome.AnalyzersRun,
		"sufficient", outcome.SufficientData,
		"duration_ms", outcome.Duration.Milliseconds(),
	)

	o.notify(ctx, run, ports.NewEvent(
		ports.EventTypePipelineCompleted,
		run.id,
		"",
		ports.PipelineCompletedEvent{Outcome: outcome},
	))

	// Esperar a que todas las notificaciones terminen antes de retornar
	run.close()

	return outcome, nil
}

// filterEnabled descarta configs deshabilitadas y nombres repetidos.
func (o *Orchestrator) filterEnabled(configs []ports.AnalyzerConfig) []ports.AnalyzerConfig {
	enabled := make([]ports.AnalyzerConfig, 0, len(configs))
	seen := make(map[string]struct{}, len(configs))

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if _, dup := seen[cfg.Name]; dup {
			o.logger.Warn("duplicate analyzer config ignored", "analyzer", cfg.Name)
			continue
		}
		seen[cfg.Name] = struct{}{}
		enabled = append(enabled, cfg)
	}
	return enabled
}

// execute despacha las invocaciones al pool y completa PerAnalyzer. Todo
// analyzer sin resultado al vencer ctx se registra como Timeout.
func (o *Orchestrator) execute(
	ctx context.Context,
	run *pipelineRun,
	outcome *domain.PipelineOutcome,
	payload *domain.ContentPayload,
	enabled []ports.AnalyzerConfig,
) {
	tasks := make([]workerpool.Task, 0, len(enabled))
	for _, cfg := range enabled {
		cfg := cfg // per-iteration copy for the task closure (go < 1.22 loop semantics)
		analyzer, ok := o.analyzers[cfg.Name]
		if !ok {
			res := domain.NewFailureResult(cfg.Name, domain.ErrorKindDefinitive,
				fmt.Errorf("%w: %s", domain.ErrAnalyzerNotFound, cfg.Name))
			o.logger.Warn("enabled analyzer has no implementation", "analyzer", cfg.Name)
			outcome.PerAnalyzer[cfg.Name] = res
			o.notifyResult(ctx, run, res)
			continue
		}

		tasks = append(tasks, NewAnalyzerTask(cfg, o.costOf(cfg.Name), func(taskCtx context.Context) domain.AnalyzerResult {
			return o.invoke(taskCtx, run, analyzer, payload, cfg)
		}))
	}

	results, err := o.pool.Submit(ctx, tasks)
	for _, tr := range results {
		if task, ok := tr.Task.(*AnalyzerTask); ok && task.Done() {
			outcome.PerAnalyzer[task.Name()] = task.Result()
		}
	}

	if err != nil {
		o.logger.Warn("pipeline deadline reached",
			"run_id", run.id,
			"completed", len(results),
			"total", len(tasks),
		)
	}

	// Analyzers pendientes: su resultado tardío se descarta
	for _, task := range tasks {
		name := task.Name()
		if _, done := outcome.PerAnalyzer[name]; done {
			continue
		}
		res := domain.NewFailureResult(name, domain.ErrorKindTimeout, domain.ErrPipelineDeadline)
		res.Attempts = 0
		outcome.PerAnalyzer[name] = res
		o.notifyResult(ctx, run, res)
	}
}

// invoke es la invocación envuelta de un analyzer: cache → retry → timeout.
// Los resultados degradados no se cachean.
func (o *Orchestrator) invoke(
	ctx context.Context,
	run *pipelineRun,
	analyzer ports.Analyzer,
	payload *domain.ContentPayload,
	cfg ports.AnalyzerConfig,
) domain.AnalyzerResult {
	key := cache.Fingerprint(cfg.Name, inputFor(analyzer, payload), cfg.Options)

	if o.cache != nil {
		if cached, ok := o.cache.Get(key); ok {
			cached.FromCache = true
			o.logger.Debug("cache hit", "analyzer", cfg.Name)
			o.notify(ctx, run, ports.NewEvent(ports.EventTypeAnalyzerCached, run.id, cfg.Name, ports.AnalyzerEvent{Result: cached}))
			return cached
		}
	}

	o.notify(ctx, run, ports.NewEvent(ports.EventTypeAnalyzerStarted, run.id, cfg.Name, nil))

	res := o.deduplicated(ctx, key, analyzer, payload, cfg)

	if res.Success && !res.Degraded && o.cache != nil {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = o.defaultTTL
		}
		o.cache.Put(key, res, ttl)
	}

	o.notifyResult(ctx, run, res)
	return res
}

// deduplicated comparte una invocación en curso idéntica (mismo analyzer,
// misma entrada, mismas opciones) entre ejecuciones concurrentes.
func (o *Orchestrator) deduplicated(
	ctx context.Context,
	key string,
	analyzer ports.Analyzer,
	payload *domain.ContentPayload,
	cfg ports.AnalyzerConfig,
) domain.AnalyzerResult {
	ch := o.inflight.DoChan(key, func() (interface{}, error) {
		return o.invoker.Run(ctx, analyzer, payload, cfg), nil
	})

	select {
	case r := <-ch:
		res := r.Val.(domain.AnalyzerResult)
		if r.Shared && !res.Success && ctx.Err() == nil {
			// El fallo pudo deberse al deadline de otra ejecución
			return o.invoker.Run(ctx, analyzer, payload, cfg)
		}
		return res.Clone()

	case <-ctx.Done():
		res := domain.NewFailureResult(cfg.Name, domain.ErrorKindTimeout, domain.ErrPipelineDeadline)
		res.Attempts = 0
		return res
	}
}

// finalize agrega los resultados y completa el outcome.
func (o *Orchestrator) finalize(outcome *domain.PipelineOutcome, enabled []ports.AnalyzerConfig) {
	agg := o.aggregator.Aggregate(outcome.PerAnalyzer, enabled)

	outcome.OverallScore = agg.Score
	outcome.Level = agg.Level
	outcome.AnalyzersSucceeded = agg.Succeeded
	outcome.SufficientData = agg.SufficientData
	outcome.TotalWeight = agg.TotalWeight
	if !outcome.SufficientData {
		outcome.ErrorKind = domain.ErrorKindInsufficientData
	}
}

func (o *Orchestrator) costOf(name string) int {
	if meta, ok := o.metadata[name]; ok && meta.Cost > 0 {
		return meta.Cost
	}
	return defaultAnalyzerCost
}

// Close detiene el worker pool.
func (o *Orchestrator) Close() {
	o.pool.Stop()
}

// inputFor retorna la entrada que identifica el payload para un analyzer.
func inputFor(analyzer ports.Analyzer, payload *domain.ContentPayload) string {
	if keyer, ok := analyzer.(ports.InputKeyer); ok {
		return keyer.InputKey(payload)
	}
	return payload.CacheKey()
}

func scoreField(outcome *domain.PipelineOutcome) interface{} {
	if score, ok := outcome.Score(); ok {
		return score
	}
	return "n/a"
}

// notifyResult publica el evento que corresponde al resultado de un analyzer.
func (o *Orchestrator) notifyResult(ctx context.Context, run *pipelineRun, res domain.AnalyzerResult) {
	eventType := ports.EventTypeAnalyzerCompleted
	switch {
	case res.Success:
	case res.ErrorKind == domain.ErrorKindTimeout:
		eventType = ports.EventTypeAnalyzerTimeout
	default:
		eventType = ports.EventTypeAnalyzerFailed
	}
	o.notify(ctx, run, ports.NewEvent(eventType, run.id, res.AnalyzerName, ports.AnalyzerEvent{Result: res}))
}

// notify envía una notificación a todos los observers.
// Usa goroutines con WaitGroup y timeout para evitar leaks y bloqueos.
func (o *Orchestrator) notify(ctx context.Context, run *pipelineRun, event ports.Event) {
	for _, observer := range o.observers {
		if !run.track() {
			return
		}
		go func(notifier ports.Notifier) {
			defer run.notifyWg.Done()

			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- notifier.Notify(notifyCtx, event)
			}()

			select {
			case err := <-done:
				if err != nil {
					o.logger.Warn("notification failed", "error", err.Error())
				}
			case <-notifyCtx.Done():
				o.logger.Warn("notification timeout exceeded",
					"timeout", notificationTimeout,
					"event_type", event.Type,
				)
			}
		}(observer)
	}
}
