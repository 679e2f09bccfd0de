// internal/platform/registry/analyzer_registry.go
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"trustlens/internal/core/ports"
	"trustlens/internal/platform/logx"
)

// AnalyzerRegistry gestiona el registro y construcción de analyzers.
// Implementa el patrón Registry + Factory para desacoplar la creación
// de analyzers del código de aplicación.
type AnalyzerRegistry struct {
	mu        sync.RWMutex
	factories map[string]AnalyzerFactory
	metadata  map[string]ports.AnalyzerMetadata
	logger    logx.Logger
}

// AnalyzerFactory es una función que crea una instancia de Analyzer.
type AnalyzerFactory func(cfg ports.AnalyzerConfig, logger logx.Logger) (ports.Analyzer, error)

// globalRegistry es la instancia global del registry.
var globalRegistry *AnalyzerRegistry
var once sync.Once

// Global retorna la instancia global del registry.
func Global() *AnalyzerRegistry {
	once.Do(func() {
		globalRegistry = NewAnalyzerRegistry(logx.New())
	})
	return globalRegistry
}

// NewAnalyzerRegistry crea un nuevo registry de analyzers.
func NewAnalyzerRegistry(logger logx.Logger) *AnalyzerRegistry {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &AnalyzerRegistry{
		factories: make(map[string]AnalyzerFactory),
		metadata:  make(map[string]ports.AnalyzerMetadata),
		logger:    logger.With("component", "analyzer-registry"),
	}
}

// Register registra una factory con su metadata.
// Típicamente llamado desde init() de cada paquete de analyzer.
func (r *AnalyzerRegistry) Register(name string, factory AnalyzerFactory, meta ports.AnalyzerMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("analyzer name cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("factory cannot be nil for analyzer %s", name)
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("analyzer %s is already registered", name)
	}

	if meta.Name == "" {
		meta.Name = name
	}

	r.factories[name] = factory
	r.metadata[name] = meta
	r.logger.Debug("analyzer registered", "name", name, "dimension", meta.Dimension)

	return nil
}

// Build construye una instancia por cada config habilitada con factory
// registrada. Los analyzers sin factory o cuya factory falla quedan fuera del
// mapa; el error retornado los agrupa y el mapa conserva los que sí se
// construyeron.
func (r *AnalyzerRegistry) Build(configs []ports.AnalyzerConfig, logger logx.Logger) (map[string]ports.Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if logger == nil {
		logger = r.logger
	}

	analyzers := make(map[string]ports.Analyzer, len(configs))
	var errs []error

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		factory, exists := r.factories[cfg.Name]
		if !exists {
			r.logger.Warn("analyzer not registered, skipping", "analyzer", cfg.Name)
			errs = append(errs, fmt.Errorf("analyzer %s not registered in registry", cfg.Name))
			continue
		}

		analyzer, err := factory(cfg, logger.With("analyzer", cfg.Name))
		if err != nil {
			r.logger.Warn("analyzer build failed", "analyzer", cfg.Name, "error", err.Error())
			errs = append(errs, fmt.Errorf("failed to build analyzer %s: %w", cfg.Name, err))
			continue
		}

		analyzers[cfg.Name] = analyzer
		r.logger.Debug("analyzer built", "name", cfg.Name, "weight", cfg.Weight)
	}

	logger.Debug("analyzers built", "count", len(analyzers), "requested", len(configs))
	return analyzers, errors.Join(errs...)
}

// List retorna los nombres de todos los analyzers registrados.
func (r *AnalyzerRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata retorna el metadata de un analyzer.
func (r *AnalyzerRegistry) GetMetadata(name string) (ports.AnalyzerMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[name]
	return meta, exists
}

// GetAllMetadata retorna el metadata de todos los analyzers registrados.
func (r *AnalyzerRegistry) GetAllMetadata() map[string]ports.AnalyzerMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]ports.AnalyzerMetadata, len(r.metadata))
	for name, meta := range r.metadata {
		result[name] = meta
	}

	return result
}

// IsRegistered verifica si un analyzer está registrado.
func (r *AnalyzerRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Clear elimina todos los analyzers registrados (útil para testing).
func (r *AnalyzerRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]AnalyzerFactory)
	r.metadata = make(map[string]ports.AnalyzerMetadata)
}
