// internal/core/ports/notifier.go
package ports

import (
	"context"
	"time"

	"trustlens/internal/core/domain"
)

// Notifier es el port para notificaciones de eventos del pipeline.
// Implementa el patrón Observer para desacoplar la orquestación de
// la presentación (progreso en terminal, webhooks, etc.).
type Notifier interface {
	// Notify envía una notificación para un evento
	Notify(ctx context.Context, event Event) error

	// Close cierra el notifier y libera recursos
	Close() error
}

// Event representa un evento del sistema.
type Event struct {
	// Type tipo de evento
	Type EventType

	// Timestamp momento del evento
	Timestamp time.Time

	// RunID ejecución del pipeline relacionada
	RunID string

	// Analyzer analyzer que generó el evento (vacío para eventos de pipeline)
	Analyzer string

	// Data datos específicos del evento
	Data interface{}
}

// EventType define los tipos de eventos del sistema.
type EventType string

const (
	// Pipeline events
	EventTypePipelineStarted   EventType = "pipeline.started"
	EventTypePipelineCompleted EventType = "pipeline.completed"

	// Analyzer events
	EventTypeAnalyzerStarted   EventType = "analyzer.started"
	EventTypeAnalyzerCompleted EventType = "analyzer.completed"
	EventTypeAnalyzerFailed    EventType = "analyzer.failed"
	EventTypeAnalyzerTimeout   EventType = "analyzer.timeout"
	EventTypeAnalyzerCached    EventType = "analyzer.cached"
)

// NewEvent crea un nuevo evento.
func NewEvent(eventType EventType, runID, analyzer string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		Analyzer:  analyzer,
		Data:      data,
	}
}

// PipelineStartedEvent datos para evento de inicio.
type PipelineStartedEvent struct {
	PayloadID string
	Analyzers []string
}

// PipelineCompletedEvent datos para evento de finalización.
type PipelineCompletedEvent struct {
	Outcome *domain.PipelineOutcome
}

// AnalyzerEvent datos para eventos por analyzer.
type AnalyzerEvent struct {
	Result domain.AnalyzerResult
}
