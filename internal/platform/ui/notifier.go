// internal/platform/ui/notifier.go
package ui

import (
	"context"
	"sync"

	"trustlens/internal/core/domain"
	"trustlens/internal/core/ports"
)

// ProgressNotifier adapta eventos del pipeline a un Presenter.
// Las notificaciones llegan concurrentemente y sin orden garantizado:
// un "started" tardío nunca pisa un estado final y los estados finales
// duplicados se descartan.
type ProgressNotifier struct {
	presenter Presenter

	mu   sync.Mutex
	runs map[string]map[string]Status
	done map[string]bool
}

// NewProgressNotifier crea un notifier que delega en el presenter.
func NewProgressNotifier(presenter Presenter) *ProgressNotifier {
	if presenter == nil {
		presenter = NewNoopPresenter()
	}
	return &ProgressNotifier{
		presenter: presenter,
		runs:      make(map[string]map[string]Status),
		done:      make(map[string]bool),
	}
}

// Notify procesa un evento del pipeline.
func (n *ProgressNotifier) Notify(ctx context.Context, event ports.Event) error {
	switch event.Type {
	case ports.EventTypePipelineStarted:
		data, _ := event.Data.(ports.PipelineStartedEvent)
		if !n.startRun(event.RunID, data.Analyzers) {
			return nil
		}
		n.presenter.Start(RunInfo{
			RunID:     event.RunID,
			PayloadID: data.PayloadID,
			Analyzers: data.Analyzers,
		})

	case ports.EventTypeAnalyzerStarted:
		if n.transition(event.RunID, event.Analyzer, StatusRunning) {
			n.presenter.StartAnalyzer(event.Analyzer)
		}

	case ports.EventTypeAnalyzerCompleted,
		ports.EventTypeAnalyzerCached,
		ports.EventTypeAnalyzerTimeout,
		ports.EventTypeAnalyzerFailed:
		status := statusForEvent(event.Type)
		if !n.transition(event.RunID, event.Analyzer, status) {
			return nil
		}
		var result domain.AnalyzerResult
		if data, ok := event.Data.(ports.AnalyzerEvent); ok {
			result = data.Result
		}
		n.presenter.FinishAnalyzer(event.Analyzer, status, result)

	case ports.EventTypePipelineCompleted:
		if !n.finishRun(event.RunID) {
			return nil
		}
		data, _ := event.Data.(ports.PipelineCompletedEvent)
		stats := StatsFromOutcome(data.Outcome)
		if stats.RunID == "" {
			stats.RunID = event.RunID
		}
		n.presenter.Finish(stats)
	}

	return nil
}

// Close cierra el presenter subyacente.
func (n *ProgressNotifier) Close() error {
	return n.presenter.Close()
}

// Status retorna el estado conocido de un analyzer en una ejecución.
func (n *ProgressNotifier) Status(runID, analyzer string) Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.runs[runID][analyzer]
}

func (n *ProgressNotifier) startRun(runID string, analyzers []string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done[runID] {
		return false
	}
	states := n.states(runID)
	for _, name := range analyzers {
		if _, ok := states[name]; !ok {
			states[name] = StatusPending
		}
	}
	return true
}

// transition aplica un cambio de estado si es válido.
func (n *ProgressNotifier) transition(runID, analyzer string, next Status) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done[runID] {
		return false
	}
	states := n.states(runID)
	if states[analyzer].Terminal() {
		return false
	}
	states[analyzer] = next
	return true
}

func (n *ProgressNotifier) finishRun(runID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done[runID] {
		return false
	}
	n.done[runID] = true
	return true
}

func (n *ProgressNotifier) states(runID string) map[string]Status {
	states, ok := n.runs[runID]
	if !ok {
		states = make(map[string]Status)
		n.runs[runID] = states
	}
	return states
}

func statusForEvent(t ports.EventType) Status {
	switch t {
	case ports.EventTypeAnalyzerCompleted:
		return StatusSuccess
	case ports.EventTypeAnalyzerCached:
		return StatusCached
	case ports.EventTypeAnalyzerTimeout:
		return StatusTimeout
	default:
		return StatusError
	}
}

var _ ports.Notifier = (*ProgressNotifier)(nil)
