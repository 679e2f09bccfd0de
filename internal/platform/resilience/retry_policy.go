// internal/platform/resilience/retry_policy.go
package resilience

import (
	"context"
	"fmt"
	"math"
	"time"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
	"trustlens/internal/platform/rate"
)

// BackoffStrategy define cómo crece la espera entre intentos.
type BackoffStrategy string

const (
	// BackoffLinear espera n*BaseDelay antes del intento n+1
	BackoffLinear BackoffStrategy = "linear"

	// BackoffExponential espera BaseDelay*Multiplier^(n-1) antes del intento n+1
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryConfig configura el backoff del RetryPolicy.
type RetryConfig struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration // 0 = sin tope
	Strategy   BackoffStrategy
	Multiplier float64
}

// DefaultRetryConfig retorna configuración de retry por defecto.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Strategy:   BackoffLinear,
		Multiplier: 2.0,
	}
}

// SleepFunc espera d o hasta que ctx termine.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy re-ejecuta un analyzer ante fallos Timeout o TransientFailure,
// hasta cfg.MaxRetries intentos en total.
type RetryPolicy struct {
	invoker  Invoker
	config   RetryConfig
	breakers *BreakerSet
	limits   *rate.Set
	sleep    SleepFunc
	logger   logx.Logger
}

// RetryOption configura un RetryPolicy.
type RetryOption func(*RetryPolicy)

// WithRetryConfig reemplaza la configuración de backoff.
func WithRetryConfig(cfg RetryConfig) RetryOption {
	return func(p *RetryPolicy) { p.config = cfg }
}

// WithBreakers activa un circuit breaker por analyzer.
func WithBreakers(set *BreakerSet) RetryOption {
	return func(p *RetryPolicy) { p.breakers = set }
}

// WithRateLimits aplica un limitador por analyzer antes de cada intento.
func WithRateLimits(set *rate.Set) RetryOption {
	return func(p *RetryPolicy) { p.limits = set }
}

// WithSleep reemplaza la espera entre intentos (tests).
func WithSleep(fn SleepFunc) RetryOption {
	return func(p *RetryPolicy) { p.sleep = fn }
}

// WithRetryLogger asigna el logger.
func WithRetryLogger(logger logx.Logger) RetryOption {
	return func(p *RetryPolicy) { p.logger = logger }
}

// NewRetryPolicy crea un RetryPolicy sobre el invoker dado.
func NewRetryPolicy(invoker Invoker, opts ...RetryOption) *RetryPolicy {
	p := &RetryPolicy{
		invoker: invoker,
		config:  DefaultRetryConfig(),
		sleep:   sleepCtx,
		logger:  logx.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.config.Strategy == "" {
		p.config.Strategy = BackoffLinear
	}
	if p.config.Multiplier <= 1 {
		p.config.Multiplier = 2.0
	}
	p.logger = p.logger.With("component", "retry")
	return p
}

// Run ejecuta el analyzer con reintentos y retorna el resultado exitoso o el
// último fallo observado, anotado con la cantidad de intentos.
func (p *RetryPolicy) Run(
	ctx context.Context,
	analyzer ports.Analyzer,
	payload *domain.ContentPayload,
	cfg ports.AnalyzerConfig,
) domain.AnalyzerResult {
	name := analyzerName(analyzer, cfg)
	start := time.Now()

	maxAttempts := cfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var breaker *CircuitBreaker
	if p.breakers != nil {
		breaker = p.breakers.Get(name)
		if !breaker.Allow() {
			p.logger.Warn("circuit open, skipping analyzer", "analyzer", name)
			res := domain.NewFailureResult(name, domain.ErrorKindTransient, domain.ErrCircuitOpen)
			res.Attempts = 0
			return res
		}
	}

	var last domain.AnalyzerResult
	var degraded *domain.AnalyzerResult
	made := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if p.limits != nil {
			if err := p.limits.Wait(ctx, name); err != nil {
				last = domain.NewFailureResult(name, domain.ErrorKindTimeout,
					fmt.Errorf("%w: waiting for rate limit: %v", domain.ErrPipelineDeadline, err))
				last.Attempts = attempt - 1
				break
			}
		}

		res := p.invoker.Run(ctx, analyzer, payload, cfg)
		res.Attempts = attempt
		made = attempt

		if res.Success {
			if breaker != nil {
				breaker.RecordSuccess()
			}
			if !res.Degraded || attempt == maxAttempts || ctx.Err() != nil {
				if attempt > 1 {
					p.logger.Info("analyzer succeeded after retry", "analyzer", name, "attempt", attempt, "degraded", res.Degraded)
				}
				res.Elapsed = time.Since(start)
				return res
			}
			// Resultado parcial: se guarda como respaldo y se reintenta
			fallback := res
			degraded = &fallback
		} else {
			last = res
			if !res.ErrorKind.Retryable() || attempt == maxAttempts || ctx.Err() != nil {
				break
			}
		}

		delay := p.Backoff(attempt)
		p.logger.Debug("retrying analyzer",
			"analyzer", name,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", res.Error,
		)

		if err := p.sleep(ctx, delay); err != nil {
			last = domain.NewFailureResult(name, domain.ErrorKindTimeout, domain.ErrPipelineDeadline)
			last.Attempts = attempt
			break
		}
	}

	if degraded != nil {
		// Un resultado parcial es mejor que el fallo de un intento posterior
		degraded.Attempts = made
		degraded.Elapsed = time.Since(start)
		return *degraded
	}

	if breaker != nil && last.ErrorKind.Retryable() {
		breaker.RecordFailure()
	}
	if maxAttempts > 1 && last.Attempts == maxAttempts {
		p.logger.Warn("analyzer failed after all attempts",
			"analyzer", name,
			"attempts", last.Attempts,
			"kind", last.ErrorKind.String(),
		)
	}

	last.Elapsed = time.Since(start)
	return last
}

// Backoff retorna la espera previa al intento attempt+1.
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.config.delay(attempt)
	if p.config.MaxDelay > 0 && delay > p.config.MaxDelay {
		delay = p.config.MaxDelay
	}
	return delay
}

// delay es la espera sin tope.
func (c RetryConfig) delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	if c.Strategy == BackoffExponential {
		return time.Duration(float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt-1)))
	}
	return time.Duration(attempt) * c.BaseDelay
}

// Validate verifica que, con hasta maxAttempts intentos, cada espera sea
// estrictamente mayor que la anterior. MaxDelay no puede recortar ninguna.
func (c RetryConfig) Validate(maxAttempts int) error {
	if c.Strategy == BackoffExponential && c.Multiplier <= 1 {
		return fmt.Errorf("%w: retry multiplier must be greater than 1, got %g", domain.ErrInvalidConfig, c.Multiplier)
	}
	if maxAttempts < 3 {
		// una sola espera como máximo
		return nil
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("%w: retry base delay must be positive with %d attempts", domain.ErrInvalidConfig, maxAttempts)
	}
	if last := c.delay(maxAttempts - 1); c.MaxDelay > 0 && last > c.MaxDelay {
		return fmt.Errorf("%w: retry max delay %s caps the backoff for %d attempts (needs at least %s)",
			domain.ErrInvalidConfig, c.MaxDelay, maxAttempts, last)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
