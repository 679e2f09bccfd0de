// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio comunes.
var (
	// Payload errors
	ErrNilPayload          = errors.New("payload cannot be nil")
	ErrEmptyContent        = errors.New("content text cannot be empty")
	ErrInvalidContentKind  = errors.New("invalid content kind")
	ErrInvalidSourceDomain = errors.New("invalid source domain")

	// Analyzer errors
	ErrAnalyzerNotFound  = errors.New("analyzer not found")
	ErrAnalyzerTimeout   = errors.New("analyzer execution timeout")
	ErrAnalyzerPanicked  = errors.New("analyzer panicked")
	ErrDefinitiveFailure = errors.New("analyzer returned a failure verdict")
	ErrCircuitOpen       = errors.New("circuit breaker is open")
	ErrPipelineDeadline  = errors.New("pipeline deadline exceeded")
	ErrInsufficientData  = errors.New("too few analyzers succeeded")

	// Configuration errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownAnalyzer  = errors.New("unknown analyzer referenced")
	ErrDuplicateConfig  = errors.New("duplicate analyzer configuration")
	ErrNegativeWeight   = errors.New("analyzer weight cannot be negative")
	ErrConfigLoadFailed = errors.New("failed to load configuration")
)

// Definitive construye el error que un analyzer devuelve cuando su veredicto
// es un fallo que no se debe reintentar (contenido no soportado, idioma, etc.).
func Definitive(reason string) error {
	return fmt.Errorf("%w: %s", ErrDefinitiveFailure, reason)
}

// IsDefinitive indica si err representa un veredicto de fallo definitivo.
func IsDefinitive(err error) bool {
	return errors.Is(err, ErrDefinitiveFailure)
}
