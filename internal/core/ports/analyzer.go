// internal/core/ports/analyzer.go
package ports

import (
	"context"
	"time"

	"trustlens/internal/core/domain"
)

// Analyzer es el port primario que implementa cada dimensión de análisis
// (credibility, bias, factcheck, ...). El core no conoce cómo puntúa.
//
// Analyze debe ser seguro para invocación concurrente y no debe retener
// el payload después de retornar. Para un veredicto de fallo que no se
// debe reintentar, retornar un error que envuelva domain.ErrDefinitiveFailure
// (ver domain.Definitive); cualquier otro error se considera transitorio.
type Analyzer interface {
	// Name retorna el nombre único del analyzer (ej: "credibility", "bias")
	Name() string

	// Analyze evalúa el contenido y retorna score + findings
	Analyze(ctx context.Context, payload *domain.ContentPayload, options map[string]any) (Analysis, error)
}

// InputKeyer lo implementan analyzers que solo leen parte del payload.
// La clave retornada alimenta el fingerprint de cache para ese analyzer.
type InputKeyer interface {
	InputKey(payload *domain.ContentPayload) string
}

// Analysis es la respuesta cruda de un analyzer.
type Analysis struct {
	// Score en [0,100]; valores fuera de rango se acotan
	Score int

	// Findings datos estructurados para el reporte
	Findings domain.Findings

	// Degraded marca un resultado parcial que otro intento podría mejorar.
	// No se cachea y el RetryPolicy lo reintenta mientras queden intentos.
	Degraded bool
}

// AnalyzerConfig describe cómo invocar y ponderar un analyzer.
// Inmutable una vez cargada.
type AnalyzerConfig struct {
	// Name identidad del analyzer
	Name string `yaml:"name" json:"name"`

	// Enabled indica si el analyzer participa del pipeline
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Timeout tiempo máximo por intento
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// MaxRetries número total de intentos (0 y 1 = un solo intento)
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// Weight peso en la agregación
	Weight float64 `yaml:"weight" json:"weight"`

	// CacheTTL vida de los resultados cacheados (0 = default global)
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`

	// RateLimit límite de invocaciones por segundo (0 = sin límite)
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`

	// Priority prioridad de scheduling (mayor = antes)
	Priority int `yaml:"priority" json:"priority"`

	// Options configuración específica del analyzer
	Options map[string]any `yaml:"options" json:"options"`
}

// DefaultAnalyzerConfig retorna una configuración por defecto.
func DefaultAnalyzerConfig(name string) AnalyzerConfig {
	return AnalyzerConfig{
		Name:       name,
		Enabled:    true,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		Weight:     0,
		Options:    make(map[string]any),
	}
}

// AnalyzerMetadata contiene metadatos sobre un analyzer registrado.
type AnalyzerMetadata struct {
	Name        string
	Description string
	Version     string

	// Dimension qué aspecto de la confianza evalúa
	Dimension string

	// DefaultWeight peso sugerido cuando la configuración no define uno
	DefaultWeight float64

	// RequiresNetwork indica que invoca un servicio externo
	RequiresNetwork bool

	// Cost costo relativo estimado (0-100), usado por el scheduler
	Cost int
}
