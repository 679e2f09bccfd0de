// internal/platform/registry/config_registry.go
package registry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
)

// WeightTolerance margen aceptado al verificar que los pesos habilitados suman 1.0.
const WeightTolerance = 1e-6

// ConfigRegistry es la descripción estática e inmutable de cada analyzer.
// Se valida una sola vez al construirse; los errores de configuración son
// fatales y se reportan antes de cualquier ejecución.
type ConfigRegistry struct {
	order   []string
	configs map[string]ports.AnalyzerConfig
}

// NewConfigRegistry valida las configuraciones y construye el registry.
// known, si no es nil, decide qué nombres de analyzer existen.
func NewConfigRegistry(configs []ports.AnalyzerConfig, known func(name string) bool, logger logx.Logger) (*ConfigRegistry, error) {
	if logger == nil {
		logger = logx.NewNop()
	}
	logger = logger.With("component", "config-registry")

	r := &ConfigRegistry{
		order:   make([]string, 0, len(configs)),
		configs: make(map[string]ports.AnalyzerConfig, len(configs)),
	}

	var errs []error
	for i, cfg := range configs {
		cfg.Name = strings.TrimSpace(cfg.Name)

		if err := validateConfig(cfg); err != nil {
			errs = append(errs, fmt.Errorf("analyzer #%d: %w", i, err))
			continue
		}
		if _, dup := r.configs[cfg.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrDuplicateConfig, cfg.Name))
			continue
		}
		if known != nil && !known(cfg.Name) {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrUnknownAnalyzer, cfg.Name))
			continue
		}

		cfg.Options = cloneOptions(cfg.Options)
		r.order = append(r.order, cfg.Name)
		r.configs[cfg.Name] = cfg
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	total := r.TotalEnabledWeight()
	if len(r.AllEnabled()) > 0 && math.Abs(total-1.0) > WeightTolerance {
		logger.Warn("enabled analyzer weights do not sum to 1.0, scores will be renormalized",
			"total_weight", total,
			"enabled", len(r.AllEnabled()),
		)
	}

	return r, nil
}

func validateConfig(cfg ports.AnalyzerConfig) error {
	switch {
	case cfg.Name == "":
		return fmt.Errorf("%w: analyzer name cannot be empty", domain.ErrInvalidConfig)
	case cfg.Weight < 0 || math.IsNaN(cfg.Weight) || math.IsInf(cfg.Weight, 0):
		return fmt.Errorf("%w: %s has weight %v", domain.ErrNegativeWeight, cfg.Name, cfg.Weight)
	case cfg.MaxRetries < 0:
		return fmt.Errorf("%w: %s max_retries cannot be negative, got %d", domain.ErrInvalidConfig, cfg.Name, cfg.MaxRetries)
	case cfg.Timeout < 0:
		return fmt.Errorf("%w: %s timeout cannot be negative, got %v", domain.ErrInvalidConfig, cfg.Name, cfg.Timeout)
	case cfg.CacheTTL < 0:
		return fmt.Errorf("%w: %s cache_ttl cannot be negative, got %v", domain.ErrInvalidConfig, cfg.Name, cfg.CacheTTL)
	case cfg.RateLimit < 0:
		return fmt.Errorf("%w: %s rate_limit cannot be negative, got %v", domain.ErrInvalidConfig, cfg.Name, cfg.RateLimit)
	}
	return nil
}

// IsEnabled indica si el analyzer existe y está habilitado.
func (r *ConfigRegistry) IsEnabled(name string) bool {
	cfg, ok := r.configs[name]
	return ok && cfg.Enabled
}

// AllEnabled retorna las configuraciones habilitadas en orden de declaración.
func (r *ConfigRegistry) AllEnabled() []ports.AnalyzerConfig {
	out := make([]ports.AnalyzerConfig, 0, len(r.order))
	for _, name := range r.order {
		if cfg := r.configs[name]; cfg.Enabled {
			out = append(out, copyConfig(cfg))
		}
	}
	return out
}

// WeightOf retorna el peso configurado (0 si el analyzer no existe).
func (r *ConfigRegistry) WeightOf(name string) float64 {
	return r.configs[name].Weight
}

// Get retorna la configuración de un analyzer.
func (r *ConfigRegistry) Get(name string) (ports.AnalyzerConfig, bool) {
	cfg, ok := r.configs[name]
	if !ok {
		return ports.AnalyzerConfig{}, false
	}
	return copyConfig(cfg), true
}

// All retorna todas las configuraciones en orden de declaración.
func (r *ConfigRegistry) All() []ports.AnalyzerConfig {
	out := make([]ports.AnalyzerConfig, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, copyConfig(r.configs[name]))
	}
	return out
}

// Names retorna los nombres en orden de declaración.
func (r *ConfigRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// TotalEnabledWeight suma los pesos de los analyzers habilitados.
func (r *ConfigRegistry) TotalEnabledWeight() float64 {
	var total float64
	for _, cfg := range r.configs {
		if cfg.Enabled {
			total += cfg.Weight
		}
	}
	return total
}

func copyConfig(cfg ports.AnalyzerConfig) ports.AnalyzerConfig {
	cfg.Options = cloneOptions(cfg.Options)
	return cfg
}

func cloneOptions(opts map[string]any) map[string]any {
	if opts == nil {
		return nil
	}
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}
